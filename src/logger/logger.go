package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/jiaming2012/trade-analyst/src/eventmodels"
)

// Configure sets level, format and output of the standard logrus logger.
// An empty file logs to stdout; anything else is a rotating log file.
func Configure(cfg eventmodels.LogConfigYAML) error {
	return configure(logrus.StandardLogger(), cfg)
}

func configure(l *logrus.Logger, cfg eventmodels.LogConfigYAML) error {
	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return fmt.Errorf("Configure: invalid log level %q", cfg.Level)
	}

	l.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	case "text", "":
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	default:
		return fmt.Errorf("Configure: invalid log format %q", cfg.Format)
	}

	l.SetOutput(output(cfg))

	return nil
}

func output(cfg eventmodels.LogConfigYAML) io.Writer {
	switch cfg.File {
	case "", "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	}

	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
}
