package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mailcrate/internal/config"
	"mailcrate/internal/workflow"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveTargetPath(targetPath, config.DefaultConfigPath)
			if err != nil {
				return err
			}
			if err := checkOverwrite(target, overwrite); err != nil {
				return err
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set imap credentials before running a workflow.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration and workflows files",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}

			set, err := workflow.LoadFile(cfg.Paths.WorkflowsFile, knownHandlerNames())
			if err != nil {
				return fmt.Errorf("load workflows: %w", err)
			}
			fmt.Fprintf(out, "Workflows file: %s (%d workflows)\n", cfg.Paths.WorkflowsFile, len(set.Names()))
			if set.AnyGeneratesMetadata() {
				if err := cfg.RequireLLM(); err != nil {
					return err
				}
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newWorkflowsCommand(ctx *commandContext) *cobra.Command {
	workflowsCmd := &cobra.Command{
		Use:   "workflows",
		Short: "Workflows file utilities",
	}

	workflowsCmd.AddCommand(newWorkflowsInitCommand())
	return workflowsCmd
}

func newWorkflowsInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample workflows file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveTargetPath(targetPath, defaultWorkflowsPath)
			if err != nil {
				return err
			}
			if err := checkOverwrite(target, overwrite); err != nil {
				return err
			}
			if err := workflow.CreateSample(target); err != nil {
				return fmt.Errorf("create sample workflows: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample workflows to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the workflows file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing workflows file if present")
	return cmd
}

func defaultWorkflowsPath() (string, error) {
	cfg, _, _, err := config.Load("")
	if err != nil {
		return config.ExpandPath("~/.config/mailcrate/workflows.toml")
	}
	return cfg.Paths.WorkflowsFile, nil
}

func resolveTargetPath(flagValue string, fallback func() (string, error)) (string, error) {
	target := strings.TrimSpace(flagValue)
	if target == "" {
		resolved, err := fallback()
		if err != nil {
			return "", fmt.Errorf("determine default path: %w", err)
		}
		return resolved, nil
	}
	expanded, err := config.ExpandPath(target)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	return expanded, nil
}

func checkOverwrite(target string, overwrite bool) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	if overwrite {
		return nil
	}
	if _, err := os.Stat(target); err == nil {
		return fmt.Errorf("file already exists at %s (use --overwrite to replace it)", target)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("check path: %w", err)
	}
	return nil
}
