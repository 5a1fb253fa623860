package transport

import "context"

// Button is one inline keyboard button. Data travels back verbatim in a
// callback update when the button is pressed.
type Button struct {
	Text string
	Data string
}

// Transport is the chat platform boundary. The bot adapter implements
// it; services stay platform-agnostic behind it.
type Transport interface {
	// SendMessage posts a new message and returns its id.
	SendMessage(ctx context.Context, chatID int64, text string, buttons [][]Button) (int64, error)

	// EditMessage rewrites an existing message's text and keyboard.
	EditMessage(ctx context.Context, chatID, messageID int64, text string, buttons [][]Button) error

	DeleteMessage(ctx context.Context, chatID, messageID int64) error

	// SendFile delivers a stored file by its platform file ref.
	SendFile(ctx context.Context, chatID int64, fileRef, caption string) error

	// AnswerCallback acknowledges a button press, optionally with a toast.
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
