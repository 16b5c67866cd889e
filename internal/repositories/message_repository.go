package repositories

import (
	"errors"
	"slices"

	"messenger/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository is the append-only, globally ordered message log.
type MessageRepository interface {
	Append(msg models.Message) models.Message
	Recent(channel string, limit int) []models.Message
	Get(channel string, messageID int64) (models.Message, error)
	Edit(channel string, messageID int64, text string) (models.Message, error)
	Delete(channel string, messageID int64) error
	DeleteChannel(channel string) int
	Count() int
}

// MessageRepo keeps messages in assignment order. Ids come from a counter that is
// never rewound, so deleted ids are not reused.
type MessageRepo struct {
	messages []models.Message
	lastID   int64
}

// NewMessageRepo constructs an empty MessageRepo.
func NewMessageRepo() *MessageRepo {
	return &MessageRepo{}
}

// Append assigns the next id and stores the message.
func (r *MessageRepo) Append(msg models.Message) models.Message {
	r.lastID++
	msg.ID = r.lastID
	r.messages = append(r.messages, msg)
	return msg
}

// Recent returns up to limit of the newest messages of channel, oldest first.
func (r *MessageRepo) Recent(channel string, limit int) []models.Message {
	out := make([]models.Message, 0)
	for i := len(r.messages) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if r.messages[i].Channel == channel {
			out = append(out, r.messages[i])
		}
	}
	slices.Reverse(out)
	return out
}

// Get returns the message with messageID inside channel.
func (r *MessageRepo) Get(channel string, messageID int64) (models.Message, error) {
	idx := r.index(channel, messageID)
	if idx < 0 {
		return models.Message{}, ErrMessageNotFound
	}
	return r.messages[idx], nil
}

// Edit replaces the text and marks the message edited.
func (r *MessageRepo) Edit(channel string, messageID int64, text string) (models.Message, error) {
	idx := r.index(channel, messageID)
	if idx < 0 {
		return models.Message{}, ErrMessageNotFound
	}
	r.messages[idx].Text = text
	r.messages[idx].Edited = true
	return r.messages[idx], nil
}

// Delete removes a single message.
func (r *MessageRepo) Delete(channel string, messageID int64) error {
	idx := r.index(channel, messageID)
	if idx < 0 {
		return ErrMessageNotFound
	}
	r.messages = slices.Delete(r.messages, idx, idx+1)
	return nil
}

// DeleteChannel removes every message of channel and returns how many were dropped.
func (r *MessageRepo) DeleteChannel(channel string) int {
	before := len(r.messages)
	r.messages = slices.DeleteFunc(r.messages, func(m models.Message) bool {
		return m.Channel == channel
	})
	return before - len(r.messages)
}

// Count returns the number of stored messages.
func (r *MessageRepo) Count() int {
	return len(r.messages)
}

func (r *MessageRepo) index(channel string, messageID int64) int {
	// ids are strictly increasing along the slice
	idx, found := slices.BinarySearchFunc(r.messages, messageID, func(m models.Message, id int64) int {
		switch {
		case m.ID < id:
			return -1
		case m.ID > id:
			return 1
		}
		return 0
	})
	if !found || r.messages[idx].Channel != channel {
		return -1
	}
	return idx
}
