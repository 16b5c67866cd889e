package models

import "time"

// MessageType separates server-authored lines from user messages.
type MessageType string

const (
	MessageSystem MessageType = "system"
	MessageUser   MessageType = "message"
)

// SystemAuthor is the username shown on system messages.
const SystemAuthor = "SYSTEM"

// Message is one entry of the message log.
type Message struct {
	ID        int64            `json:"id"`
	AuthorID  string           `json:"user_id,omitempty"`
	Username  string           `json:"username"`
	Text      string           `json:"message"`
	CreatedAt time.Time        `json:"timestamp"`
	Channel   string           `json:"channel"`
	Kind      ConversationKind `json:"channel_type"`
	Type      MessageType      `json:"type"`
	Edited    bool             `json:"edited"`
}
