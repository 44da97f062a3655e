package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/gamewire/internal/logging"
)

// InitLogger configures the runtime logger and tags it with app.
func InitLogger(app string) zerolog.Logger {
	logging.ConfigureRuntime()
	logger := log.Logger.With().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

// Component returns a child of the global logger scoped to one component.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
