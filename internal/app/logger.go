package app

import (
	"io"
	"os"

	"github.com/ds124wfegd/ticketqr/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// SetupLogger configures the standard logrus logger. Without an explicit
// format, terminals get text and everything else gets JSON.
func SetupLogger(cfg config.LogConfig, out io.Writer) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetOutput(out)

	switch cfg.Format {
	case "json":
		logrus.SetFormatter(new(logrus.JSONFormatter))
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		} else {
			logrus.SetFormatter(new(logrus.JSONFormatter))
		}
	}
	return nil
}
