package events

import (
	"encoding/json"

	"go.uber.org/zap"
)

// Logger writes every event to a zap logger at debug level.
type Logger struct {
	log *zap.Logger
}

// NewLogger returns a Notifier backed by log. A nil logger is replaced
// with zap.NewNop.
func NewLogger(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{log: log.Named("events")}
}

func (l *Logger) Notify(e Event) {
	fields := []zap.Field{
		zap.String("type", string(e.Type)),
		zap.String("lesson", e.LessonID),
		zap.String("run", e.RunID),
		zap.String("title", e.Title),
		zap.Time("at", e.Timestamp),
	}
	if e.Details != nil {
		if raw, err := json.Marshal(e.Details); err == nil {
			fields = append(fields, zap.ByteString("details", raw))
		}
	}
	l.log.Debug("lesson event", fields...)
}
