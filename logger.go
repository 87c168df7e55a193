package figmacontext

import (
	"fmt"
	"log/slog"
)

// NewSlogLogger adapts l to the Logger interface.
func NewSlogLogger(l *slog.Logger) Logger {
	return slogLogger{l}
}

type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) Infof(format string, args ...any) {
	s.l.Info(fmt.Sprintf(format, args...))
}

func (s slogLogger) Warnf(format string, args ...any) {
	s.l.Warn(fmt.Sprintf(format, args...))
}

func (s slogLogger) Errorf(format string, args ...any) {
	s.l.Error(fmt.Sprintf(format, args...))
}
