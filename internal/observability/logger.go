package observability

import (
	"github.com/danmuck/padctl/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the runtime profile and tags the global logger with app.
func InitLogger(app string) zerolog.Logger {
	logging.ConfigureRuntime()
	logger := log.Logger.With().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
