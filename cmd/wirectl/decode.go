package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danmuck/gamewire/internal/inspect"
)

func decodeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "decode <hex>...",
		Short: "Decode one hex-encoded envelope",
		Long: `Decode a captured envelope (header and payload) given as hex. Arguments
are joined, so the bytes may be split across several arguments.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			raw, err := inspect.ParseHex(strings.Join(args, ""))
			if err != nil {
				return err
			}
			out, err := inspect.DecodeEnvelope(newCodec(cfg, nil), raw)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", defaultConfigPath, "config file for codec limits")
	return cmd
}
