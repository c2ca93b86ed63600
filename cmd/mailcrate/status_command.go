package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mailcrate/internal/catalog"
	"mailcrate/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status [workflow]",
		Short: "Report release completeness for one or all workflows",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := ctx.ensure()
			if err != nil {
				return err
			}

			var workflows []*workflow.Workflow
			if len(args) == 1 {
				wf, err := ctx.getWorkflow(args[0])
				if err != nil {
					return err
				}
				workflows = append(workflows, wf)
			} else {
				workflows, err = ctx.allWorkflows()
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for _, wf := range workflows {
				statuses, err := catalog.CollectionStatus(wf, cfg.Paths.ArchiveRoot)
				if err != nil {
					return fmt.Errorf("status for %s: %w", wf.Name, err)
				}
				fmt.Fprintf(out, "%s: %d releases\n", wf.Name, len(statuses))
				if len(statuses) == 0 {
					continue
				}
				rows := make([][]string, 0, len(statuses))
				for _, status := range statuses {
					rows = append(rows, []string{
						status.Folder,
						yesNo(status.HasRecord),
						yesNo(status.HasMetadata),
						strconv.Itoa(status.AudioCount),
						yesNo(status.Complete()),
					})
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"Release", "Record", "Metadata", "Audio", "Complete"},
					rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
			}
			return nil
		},
	}
}
