package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"mailcrate/internal/catalog"
	"mailcrate/internal/metadata"
	"mailcrate/internal/release"
)

// pause between LLM calls so a large backlog does not trip provider limits.
const metadataThrottle = 5 * time.Second

func newMetadataCommand(ctx *commandContext) *cobra.Command {
	var force bool
	var limit int

	cmd := &cobra.Command{
		Use:   "metadata <workflow>",
		Short: "Generate metadata for archived releases that lack it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.ensure()
			if err != nil {
				return err
			}
			if err := cfg.RequireLLM(); err != nil {
				return err
			}
			wf, err := ctx.getWorkflow(args[0])
			if err != nil {
				return err
			}

			dirs, err := catalog.ReleaseDirs(wf, cfg.Paths.ArchiveRoot)
			if err != nil {
				return err
			}

			generator := metadata.NewGenerator(ctx.newLLMClient(cfg), ctx.log)
			out := cmd.OutOrStdout()
			generated := 0
			failed := 0
			attempted := 0
			for _, dir := range dirs {
				if limit > 0 && generated >= limit {
					break
				}
				if !release.Exists(dir) {
					continue
				}
				if metadata.Exists(dir) && !force {
					continue
				}
				if attempted > 0 {
					select {
					case <-cmd.Context().Done():
						return cmd.Context().Err()
					case <-time.After(metadataThrottle):
					}
				}
				attempted++
				if err := generator.Generate(cmd.Context(), dir); err != nil {
					failed++
					fmt.Fprintf(out, "%s: %v\n", filepath.Base(dir), err)
					continue
				}
				if err := metadata.BackfillDurations(dir, ctx.log); err != nil {
					fmt.Fprintf(out, "%s: durations: %v\n", filepath.Base(dir), err)
				}
				generated++
				fmt.Fprintf(out, "%s: metadata written\n", filepath.Base(dir))
			}
			fmt.Fprintf(out, "Generated %d, failed %d\n", generated, failed)
			if failed > 0 {
				return fmt.Errorf("%d releases failed metadata generation", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Regenerate metadata that already exists")
	cmd.Flags().IntVar(&limit, "limit", 0, "Stop after generating this many (0 for no limit)")
	return cmd
}
