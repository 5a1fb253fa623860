package events

import "time"

// Event is the contract for audit events emitted to the bus.
type Event interface {
	// EventType returns the unique code for this event (e.g. "FILE_INDEXED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common implementation used by services that only need
// a type code and a flat payload.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes.
const (
	TypeFileIndexed    = "FILE_INDEXED"
	TypeFileDownloaded = "FILE_DOWNLOADED"
	TypeTokensCredited = "TOKENS_CREDITED"
	TypeBroadcastSent  = "BROADCAST_SENT"
)

// NewFileIndexed builds the audit event for a freshly catalogued file.
func NewFileIndexed(fileRef, seriesName string, originChannelID int64) Event {
	return BaseEvent{
		Type: TypeFileIndexed,
		Data: map[string]interface{}{
			"file_ref":          fileRef,
			"series_name":       seriesName,
			"origin_channel_id": originChannelID,
		},
		OccurredAt: time.Now(),
	}
}

// NewFileDownloaded builds the audit event for a delivered file.
func NewFileDownloaded(fileRef string, userID int64, tokensSpent int) Event {
	return BaseEvent{
		Type: TypeFileDownloaded,
		Data: map[string]interface{}{
			"file_ref":     fileRef,
			"user_id":      userID,
			"tokens_spent": tokensSpent,
		},
		OccurredAt: time.Now(),
	}
}

// NewTokensCredited builds the audit event for a redeemed verification.
func NewTokensCredited(userID int64, amount int) Event {
	return BaseEvent{
		Type: TypeTokensCredited,
		Data: map[string]interface{}{
			"user_id": userID,
			"amount":  amount,
		},
		OccurredAt: time.Now(),
	}
}

// NewBroadcastSent builds the audit event for a finished admin broadcast.
func NewBroadcastSent(sent, failed int) Event {
	return BaseEvent{
		Type: TypeBroadcastSent,
		Data: map[string]interface{}{
			"sent":   sent,
			"failed": failed,
		},
		OccurredAt: time.Now(),
	}
}
