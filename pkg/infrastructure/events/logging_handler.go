package events

import (
	"go.uber.org/zap"
)

// LoggingHandler writes every event it receives to a zap logger
type LoggingHandler struct {
	logger *zap.Logger
}

func NewLoggingHandler(logger *zap.Logger) *LoggingHandler {
	return &LoggingHandler{logger: logger}
}

func (h *LoggingHandler) Handle(event Event) error {
	h.logger.Info("event",
		zap.String("event_type", event.Type()),
		zap.String("stream_id", event.StreamID()),
		zap.Int("version", event.Version()),
		zap.Any("data", event.Data()),
	)
	return nil
}

func (h *LoggingHandler) CanHandle(string) bool {
	return true
}
