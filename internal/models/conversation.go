package models

import (
	"slices"
	"time"
)

// ConversationKind discriminates the three conversation shapes.
type ConversationKind string

const (
	KindPublic  ConversationKind = "public"
	KindPrivate ConversationKind = "private"
	KindGroup   ConversationKind = "group"
)

// Valid reports whether k is one of the known kinds.
func (k ConversationKind) Valid() bool {
	return k == KindPublic || k == KindPrivate || k == KindGroup
}

// Channel is a fixed public conversation.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// DefaultChannels are the public channels every server starts with.
var DefaultChannels = []Channel{
	{ID: "general", Name: "📝 General", Type: "text"},
	{ID: "games", Name: "🎮 Games", Type: "text"},
	{ID: "music", Name: "🎵 Music", Type: "text"},
	{ID: "memes", Name: "😂 Memes", Type: "text"},
}

// GeneralChannel receives system messages.
const GeneralChannel = "general"

// Conversation is a private chat or a group.
type Conversation struct {
	ID        string           `json:"id"`
	Kind      ConversationKind `json:"type"`
	Name      string           `json:"name"`
	CreatorID string           `json:"creator_id"`
	Members   []string         `json:"members"`
	CreatedAt time.Time        `json:"created_at"`
}

// HasMember reports whether userID belongs to the conversation.
func (c *Conversation) HasMember(userID string) bool {
	return slices.Contains(c.Members, userID)
}

// RemoveMember drops userID from the member list and reports whether it was present.
func (c *Conversation) RemoveMember(userID string) bool {
	idx := slices.Index(c.Members, userID)
	if idx < 0 {
		return false
	}
	c.Members = slices.Delete(c.Members, idx, idx+1)
	return true
}

// OtherMember returns the member of a private chat that is not userID.
func (c *Conversation) OtherMember(userID string) string {
	for _, m := range c.Members {
		if m != userID {
			return m
		}
	}
	return ""
}

// ConversationSummary is the per-user list entry pushed in chat and group lists.
type ConversationSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsCreator bool   `json:"is_creator"`
}
