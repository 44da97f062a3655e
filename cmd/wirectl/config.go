package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danmuck/gamewire/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or validate wirectl.toml",
	}
	cmd.AddCommand(configInitCmd(), configValidateCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(output, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote config template to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultConfigPath, "output path")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func configValidateCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(input); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Validated config at %s\n", input)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", defaultConfigPath, "config path")
	return cmd
}
