package logger

import (
	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
	walog "go.mau.fi/whatsmeow/util/log"
)

// WhatsApp returns a whatsmeow logger that writes through l under the given
// module name.
func WhatsApp(l *log.Logger, module string) walog.Logger {
	return &waLogger{l: l.WithPrefix(joinPrefix(l.GetPrefix(), module))}
}

type waLogger struct {
	l *log.Logger
}

func (w *waLogger) Warnf(msg string, args ...interface{})  { w.l.Warnf(msg, args...) }
func (w *waLogger) Errorf(msg string, args ...interface{}) { w.l.Errorf(msg, args...) }
func (w *waLogger) Infof(msg string, args ...interface{})  { w.l.Infof(msg, args...) }
func (w *waLogger) Debugf(msg string, args ...interface{}) { w.l.Debugf(msg, args...) }

func (w *waLogger) Sub(module string) walog.Logger {
	return &waLogger{l: w.l.WithPrefix(joinPrefix(w.l.GetPrefix(), module))}
}

// Cron returns a cron.Logger writing through l.
func Cron(l *log.Logger) cron.Logger {
	return cronLogger{l: l.WithPrefix(joinPrefix(l.GetPrefix(), "cron"))}
}

type cronLogger struct {
	l *log.Logger
}

// Info is demoted to debug; cron logs every wake-up at info.
func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}

func joinPrefix(prefix, module string) string {
	if prefix == "" {
		return module
	}
	return prefix + "/" + module
}
