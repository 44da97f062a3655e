package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danmuck/gamewire/internal/observability"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	observability.InitLogger("wirectl")
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "wirectl: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wirectl",
		Short: "Inspect and serve the game wire protocol codec",
		Long: `wirectl works with the binary envelopes exchanged between game
clients and the world server: list registered opcodes, decode captured
envelopes, and run the HTTP inspector.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		opcodesCmd(),
		decodeCmd(),
		serveCmd(),
		configCmd(),
		versionCmd(),
	)
	return root
}
