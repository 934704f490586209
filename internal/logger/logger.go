package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/amosWeiskopf/reportsmith/internal/config"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// New builds the application logger from the logging section of the config.
// Output is stdout, stderr, file or both (file and stderr); file output is
// rotated by lumberjack.
func New(cfg config.LoggingConfig) (*logrus.Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		})
	}

	var writers []io.Writer
	switch cfg.Output {
	case "", "stderr":
		writers = append(writers, os.Stderr)
	case "stdout":
		writers = append(writers, os.Stdout)
	case "file", "both":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("log output %q needs logging.file_path", cfg.Output)
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
		if cfg.Output == "both" {
			writers = append(writers, os.Stderr)
		}
	default:
		return nil, fmt.Errorf("unknown log output %q", cfg.Output)
	}
	log.SetOutput(io.MultiWriter(writers...))

	return log, nil
}

// Nop returns a logger that drops everything
func Nop() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// OrNop returns log, or a discarding logger when log is nil
func OrNop(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return Nop()
	}
	return log
}
