package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mailcrate/internal/workflow"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			workflows, err := ctx.allWorkflows()
			if err != nil {
				return err
			}
			if len(workflows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No workflows configured")
				return nil
			}

			rows := make([][]string, 0, len(workflows))
			for _, wf := range workflows {
				rows = append(rows, []string{
					wf.Name,
					string(wf.CollectionType),
					wf.Sender,
					yesNo(wf.GenerateMetadata),
					yesNo(wf.NormalizeAudio),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out,
				[]string{"Workflow", "Type", "Sender", "Metadata", "Normalize"},
				rows, nil))
			return nil
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <workflow>",
		Short: "Show one workflow's full configuration",
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

			rows := [][]string{
				{"Name", wf.Name},
				{"Description", wf.Description},
				{"Type", string(wf.CollectionType)},
				{"Directory", wf.BaseDir(cfg.Paths.ArchiveRoot)},
				{"Sender", wf.Sender},
				{"Subject filter", wf.SubjectFilter},
				{"Folder", wf.Folder},
				{"Before", wf.Before},
				{"After", wf.After},
				{"Require attachment", yesNo(wf.RequireAttachment)},
			}
			switch wf.CollectionType {
			case workflow.BoundVolume:
				rows = append(rows,
					[]string{"Folder pattern", wf.FolderPattern},
					[]string{"Release indicator", wf.ReleaseIndicator},
					[]string{"Number pattern", wf.ReleaseNumberPattern},
				)
			case workflow.Playlist:
				rows = append(rows, []string{"Single release name", wf.SingleReleaseName})
			}
			rows = append(rows, [][]string{
				{"Merge fragments", yesNo(wf.MergeFragments)},
				{"Extract lyrics", yesNo(wf.ExtractLyrics)},
				{"Generate metadata", yesNo(wf.GenerateMetadata)},
				{"Normalize audio", yesNo(wf.NormalizeAudio)},
			}...)
			if wf.NormalizeAudio {
				rows = append(rows,
					[]string{"Audio format", wf.AudioOutputFormat},
					[]string{"Audio bitrate", wf.AudioBitrate},
					[]string{"Target LUFS", fmt.Sprintf("%g", wf.AudioTargetLUFS)},
				)
			}
			for _, proc := range wf.AttachmentProcessors {
				rows = append(rows, []string{
					"Processor " + proc.Name,
					fmt.Sprintf("%s (%s)", proc.Handler, strings.Join(proc.FilePatterns, ", ")),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Setting", "Value"}, rows, nil))
			return nil
		},
	}
}
