package chat

import (
	"fmt"
	"math/rand"
)

const chatIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomUserID() string {
	return fmt.Sprintf("%06d", rand.Intn(1_000_000))
}

func randomChatID() string {
	buf := make([]byte, 8)
	for i := range buf {
		buf[i] = chatIDAlphabet[rand.Intn(len(chatIDAlphabet))]
	}
	return string(buf)
}

// uniqueUserID draws public ids until one is free.
func (r *Router) uniqueUserID() (string, error) {
	if r.identities.Count() >= 1_000_000 {
		return "", conflictf("no free user ids left")
	}
	for {
		id := r.newUserID()
		if !r.identities.UserIDExists(id) {
			return id, nil
		}
	}
}

func (r *Router) uniqueChatID() string {
	for {
		id := r.newChatID()
		if !r.chats.IDExists(id) && !isPublicChannel(id) {
			return id
		}
	}
}
