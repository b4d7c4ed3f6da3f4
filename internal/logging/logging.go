package logging

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Options controls logger construction
type Options struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// New builds the process logger. Format "json" uses the structured field map expected
// by log collectors, anything else the human-readable text formatter.
func New(opts Options, out io.Writer) *logrus.Logger {
	log := logrus.New()
	if out == nil {
		out = os.Stderr
	}
	log.Out = out

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.Level = level

	if opts.Format == "json" {
		log.Formatter = &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "severity",
				logrus.FieldKeyMsg:   "message",
			},
			TimestampFormat: time.RFC3339Nano,
		}
	} else {
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}
	return log
}
