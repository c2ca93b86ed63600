package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mailcrate/internal/catalog"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "manifest <workflow>",
		Short: "Write a collection manifest from archived metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.ensure()
			if err != nil {
				return err
			}
			wf, err := ctx.getWorkflow(args[0])
			if err != nil {
				return err
			}

			manifest, err := catalog.BuildManifest(wf, cfg.Paths.ArchiveRoot, ctx.log)
			if err != nil {
				return err
			}
			if err := catalog.WriteManifest(wf, cfg.Paths.ArchiveRoot, manifest); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d releases\n",
				filepath.Join(wf.BaseDir(cfg.Paths.ArchiveRoot), catalog.ManifestFilename),
				manifest.TotalReleases)
			return nil
		},
	}
}

func newRegistryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "registry",
		Short: "Rebuild the cross-collection track registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.ensure()
			if err != nil {
				return err
			}
			workflows, err := ctx.allWorkflows()
			if err != nil {
				return err
			}

			registry, err := catalog.BuildTrackRegistry(workflows, cfg.Paths.ArchiveRoot, ctx.log)
			if err != nil {
				return err
			}
			if err := catalog.WriteTrackRegistry(cfg.Paths.ArchiveRoot, registry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d tracks\n",
				filepath.Join(cfg.Paths.ArchiveRoot, catalog.TracksFilename),
				len(registry.Tracks))
			return nil
		},
	}
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <workflow>",
		Short: "Check metadata track listings against audio files on disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.ensure()
			if err != nil {
				return err
			}
			wf, err := ctx.getWorkflow(args[0])
			if err != nil {
				return err
			}

			reports, err := catalog.VerifyAudioFiles(wf, cfg.Paths.ArchiveRoot)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			missing := 0
			rows := make([][]string, 0, len(reports))
			for _, report := range reports {
				missing += len(report.Missing)
				rows = append(rows, []string{
					report.Folder,
					strconv.Itoa(report.TotalTracks),
					strconv.Itoa(len(report.Missing)),
					strings.Join(report.Missing, ", "),
				})
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No releases with metadata to verify")
				return nil
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"Release", "Tracks", "Missing", "Files"},
				rows, []columnAlignment{alignLeft, alignRight, alignRight, alignLeft}))
			if missing > 0 {
				return fmt.Errorf("%d audio files missing", missing)
			}
			fmt.Fprintln(out, "All referenced audio files present")
			return nil
		},
	}
}
