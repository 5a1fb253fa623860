package dto

// PublishIndexFileMessage is the ingest queue payload for one observed
// channel media post.
type PublishIndexFileMessage struct {
	ChannelID int64  `json:"channel_id"`
	MessageID int64  `json:"message_id"`
	FileRef   string `json:"file_ref"`
	FileName  string `json:"file_name"`
	Caption   string `json:"caption"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`

	// Set when an admin forwarded the file by hand; drives the
	// confirmation reply after ingestion.
	AdminForward bool  `json:"admin_forward,omitempty"`
	AdminChatID  int64 `json:"admin_chat_id,omitempty"`
}

// StatsResponse is the catalog and user totals for the admin command.
type StatsResponse struct {
	TotalFiles int64 `json:"total_files"`
	TotalUsers int64 `json:"total_users"`
}

// BroadcastResult summarizes a finished admin broadcast.
type BroadcastResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
