package config

import "go.uber.org/zap/zapcore"

// LogEncoder defines a log encoder kind.
type LogEncoder = string

const (
	defaultLoggingLevel = zapcore.InfoLevel
	// ConsoleLogEncoder represents logging with plain text.
	ConsoleLogEncoder LogEncoder = "console"
	// JSONLogEncoder represents logging with JSON.
	JSONLogEncoder LogEncoder = "json"
)

// LoggerConfig holds the logging level for each module.
type LoggerConfig struct {
	Encoder             LogEncoder `mapstructure:"log-encoder"`
	AppLoggerLevel      string     `mapstructure:"app"`
	EngineLoggerLevel   string     `mapstructure:"engine"`
	DatabaseLoggerLevel string     `mapstructure:"database"`
}

func defaultLoggingConfig() LoggerConfig {
	return LoggerConfig{
		Encoder:             ConsoleLogEncoder,
		AppLoggerLevel:      defaultLoggingLevel.String(),
		EngineLoggerLevel:   defaultLoggingLevel.String(),
		DatabaseLoggerLevel: zapcore.WarnLevel.String(),
	}
}
