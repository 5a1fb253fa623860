package transport

import (
	"context"
	"sync/atomic"

	"autofilter-be/internal/pkg/logger"
)

// LoggingTransport is the default Transport when no chat adapter is
// plugged in. It records every outbound action in the log and reports
// success, which keeps the rest of the system runnable in isolation.
type LoggingTransport struct {
	logger logger.ILogger
	nextID atomic.Int64
}

func NewLoggingTransport(log logger.ILogger) *LoggingTransport {
	return &LoggingTransport{logger: log}
}

func (t *LoggingTransport) SendMessage(ctx context.Context, chatID int64, text string, buttons [][]Button) (int64, error) {
	id := t.nextID.Add(1)
	t.logger.Info("transport", "send message", map[string]interface{}{
		"chat_id":    chatID,
		"message_id": id,
		"text":       text,
		"rows":       len(buttons),
	})
	return id, nil
}

func (t *LoggingTransport) EditMessage(ctx context.Context, chatID, messageID int64, text string, buttons [][]Button) error {
	t.logger.Info("transport", "edit message", map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"rows":       len(buttons),
	})
	return nil
}

func (t *LoggingTransport) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	t.logger.Info("transport", "delete message", map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
	})
	return nil
}

func (t *LoggingTransport) SendFile(ctx context.Context, chatID int64, fileRef, caption string) error {
	t.logger.Info("transport", "send file", map[string]interface{}{
		"chat_id":  chatID,
		"file_ref": fileRef,
		"caption":  caption,
	})
	return nil
}

func (t *LoggingTransport) AnswerCallback(ctx context.Context, callbackID, text string) error {
	t.logger.Info("transport", "answer callback", map[string]interface{}{
		"callback_id": callbackID,
		"text":        text,
	})
	return nil
}
