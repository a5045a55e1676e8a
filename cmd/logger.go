package cmd

import (
	"go.uber.org/zap"

	"github.com/spacemeshos/go-entrypoint/config"
	"github.com/spacemeshos/go-entrypoint/log"
)

// Logger names.
const (
	AppLogger      = "app"
	EngineLogger   = "engine"
	DatabaseLogger = "database"
)

// Loggers are configured per module.
type Loggers struct {
	App      *zap.Logger
	Engine   *zap.Logger
	Database *zap.Logger
}

// NewLoggers builds loggers from the logging config.
func NewLoggers(conf config.LoggerConfig) (*Loggers, error) {
	app, err := log.New(AppLogger, conf.Encoder, conf.AppLoggerLevel)
	if err != nil {
		return nil, err
	}
	engine, err := log.New(EngineLogger, conf.Encoder, conf.EngineLoggerLevel)
	if err != nil {
		return nil, err
	}
	database, err := log.New(DatabaseLogger, conf.Encoder, conf.DatabaseLoggerLevel)
	if err != nil {
		return nil, err
	}
	return &Loggers{App: app, Engine: engine, Database: database}, nil
}
