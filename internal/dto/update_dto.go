package dto

// IncomingMessage is a private text message from a user.
type IncomingMessage struct {
	MessageID int64
	ChatID    int64
	UserID    int64
	Username  string
	FirstName string
	Text      string
}

// IncomingCallback is an inline button press.
type IncomingCallback struct {
	CallbackID string
	MessageID  int64
	ChatID     int64
	UserID     int64
	Data       string
}

// ChannelFile is a media post observed in an indexing channel, or a
// file forwarded to the bot directly. ForwardedBy is the forwarding
// user's id and is zero for channel posts.
type ChannelFile struct {
	ChannelID   int64
	MessageID   int64
	FileRef     string
	FileName    string
	Caption     string
	MimeType    string
	Size        int64
	ForwardedBy int64
}

// Update is the single inbound envelope from the chat platform. Exactly
// one field is non-nil.
type Update struct {
	Message     *IncomingMessage
	Callback    *IncomingCallback
	ChannelFile *ChannelFile
}
