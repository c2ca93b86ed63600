package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mailcrate/internal/engine"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var force bool
	var title string

	cmd := &cobra.Command{
		Use:   "run <workflow>",
		Short: "Fetch and archive new messages for a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := ctx.getWorkflow(args[0])
			if err != nil {
				return err
			}
			release, err := ctx.acquireRunLock(wf.Name)
			if err != nil {
				return err
			}
			defer release()

			processor, err := ctx.newProcessor(wf)
			if err != nil {
				return err
			}
			summary, err := processor.Run(cmd.Context(), engine.Options{
				Force: force,
				Title: title,
			})
			if err != nil {
				return err
			}
			printSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Reprocess messages already in the registry")
	cmd.Flags().StringVar(&title, "title", "", "Release title for named_release workflows")
	return cmd
}

func newProcessOneCommand(ctx *commandContext) *cobra.Command {
	var force bool
	var title string
	var uid string
	var messageID string

	cmd := &cobra.Command{
		Use:   "process-one <workflow>",
		Short: "Archive a single message by UID or Message-ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if uid == "" && messageID == "" {
				return fmt.Errorf("one of --uid or --message-id is required")
			}
			wf, err := ctx.getWorkflow(args[0])
			if err != nil {
				return err
			}
			release, err := ctx.acquireRunLock(wf.Name)
			if err != nil {
				return err
			}
			defer release()

			processor, err := ctx.newProcessor(wf)
			if err != nil {
				return err
			}
			summary, err := processor.Run(cmd.Context(), engine.Options{
				Force:     force,
				Title:     title,
				UID:       uid,
				MessageID: messageID,
			})
			if err != nil {
				return err
			}
			if summary.Fetched == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching message found")
				return nil
			}
			printSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Reprocess even when the registry knows the message")
	cmd.Flags().StringVar(&title, "title", "", "Release title for named_release workflows")
	cmd.Flags().StringVar(&uid, "uid", "", "IMAP UID of the message")
	cmd.Flags().StringVar(&messageID, "message-id", "", "Message-ID header of the message")
	return cmd
}

func printSummary(cmd *cobra.Command, summary *engine.Summary) {
	out := cmd.OutOrStdout()
	rows := [][]string{
		{"Fetched", strconv.Itoa(summary.Fetched)},
		{"Processed", strconv.Itoa(summary.Processed)},
		{"Skipped", strconv.Itoa(summary.Skipped)},
		{"Failed", strconv.Itoa(summary.Failed)},
	}
	fmt.Fprintln(out, renderTable(out, []string{"Result", "Count"}, rows,
		[]columnAlignment{alignLeft, alignRight}))
}
