package main

import (
	"encoding/json"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/danmuck/gamewire/internal/inspect"
	"github.com/danmuck/gamewire/internal/protocol/messages"
)

func opcodesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "opcodes",
		Short: "List registered opcodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := inspect.Opcodes(messages.Registry())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}

			tw := tablewriter.NewWriter(cmd.OutOrStdout())
			tw.SetHeader([]string{"Opcode", "Name", "Channel", "Direction", "Decodable"})
			tw.SetBorder(true)
			tw.SetAutoWrapText(false)
			for _, info := range infos {
				tw.Append([]string{
					info.Hex,
					info.Name,
					info.Channel,
					info.Direction,
					strconv.FormatBool(info.Decodable),
				})
			}
			tw.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
