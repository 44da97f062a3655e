package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danmuck/gamewire/internal/config"
	"github.com/danmuck/gamewire/internal/inspect"
	"github.com/danmuck/gamewire/internal/observability"
	"github.com/danmuck/gamewire/internal/protocol/message"
	"github.com/danmuck/gamewire/internal/protocol/messages"
)

const defaultConfigPath = config.DefaultPath

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP inspector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Inspect.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			codec := newCodec(cfg, observability.NewCodecMetrics(messages.Registry()))
			return inspect.New(cfg.Inspect, codec).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", defaultConfigPath, "config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

// resolveConfig loads path. A missing file at the default path falls back to
// defaults; an explicitly named one must exist.
func resolveConfig(path string, explicit bool) (config.Config, error) {
	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("path", path).Msg("no config file, using defaults")
			return config.DefaultConfig(), nil
		}
	}
	return config.Load(path)
}

func newCodec(cfg config.Config, observer message.Observer) *message.Codec {
	opts := cfg.Codec.CodecOptions()
	opts.Observer = observer
	return message.NewCodec(messages.Registry(), opts)
}
