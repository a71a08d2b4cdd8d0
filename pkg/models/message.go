package models

// Message is a direct or group chat message. Receiver is a user identity
// when IsGroup is false and a group id when true. Avatar is the sender's
// avatar captured at send time; it is a snapshot, not live-updated.
// Persisted messages are immutable except for deletion.
type Message struct {
	ID       string `json:"id"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Text     string `json:"text,omitempty"`
	File     string `json:"file,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	IsGroup  bool   `json:"isGroup"`
	TS       int64  `json:"ts"`
}
