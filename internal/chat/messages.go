package chat

import (
	"strings"

	"messenger/internal/models"
	"messenger/internal/observability"
)

func isPublicChannel(id string) bool {
	for _, ch := range models.DefaultChannels {
		if ch.ID == id {
			return true
		}
	}
	return false
}

// joinChannel returns the recent history of any conversation id. Only
// authentication is checked.
func (r *Router) joinChannel(conn Conn, req JoinChannel) error {
	if err := r.check(req); err != nil {
		return err
	}
	history := r.messages.Recent(req.ChannelID, r.historyLimit)
	conn.Send(models.Event{Name: models.EventChatHistory, Data: models.ChatHistory{Channel: req.ChannelID, Messages: history}})
	return nil
}

// resolve finds the conversation a message is addressed to. The kind hint only
// matters for ids that are not registered anywhere.
func (r *Router) resolve(channel string, hint models.ConversationKind) (models.ConversationKind, *models.Conversation, error) {
	if isPublicChannel(channel) {
		return models.KindPublic, nil, nil
	}
	if chat, err := r.chats.GetPrivate(channel); err == nil {
		return models.KindPrivate, chat, nil
	}
	if group, err := r.chats.GetGroup(channel); err == nil {
		return models.KindGroup, group, nil
	}
	if hint == models.KindPublic || hint == "" {
		return "", nil, notFoundf("channel not found")
	}
	return "", nil, notFoundf("chat not found")
}

func (r *Router) sendMessage(actor *models.Identity, req SendMessage) error {
	if actor.IsMuted(r.now()) {
		return forbiddenf("you are muted and cannot send messages")
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil
	}
	if err := r.check(req); err != nil {
		return err
	}
	if req.ChannelType != "" && !req.ChannelType.Valid() {
		return validationf("channel type must be one of: public private group")
	}

	kind, conv, err := r.resolve(req.Channel, req.ChannelType)
	if err != nil {
		return err
	}
	if conv != nil && !conv.HasMember(actor.UserID) {
		if kind == models.KindGroup {
			return forbiddenf("you are not a member of this group")
		}
		return forbiddenf("you are not a member of this chat")
	}

	msg := r.messages.Append(models.Message{
		AuthorID:  actor.UserID,
		Username:  actor.Username,
		Text:      text,
		CreatedAt: r.now(),
		Channel:   req.Channel,
		Kind:      kind,
		Type:      models.MessageUser,
	})
	observability.IncMessage(string(kind))

	event := models.Event{Name: models.EventNewMessage, Data: msg}
	if conv == nil {
		r.broadcast(event, "")
		return nil
	}
	for _, member := range conv.Members {
		r.sendToUser(member, event)
	}
	return nil
}

// deleteMessage removes a message. The deletion notice goes to every session,
// members or not, matching how edits are announced.
func (r *Router) deleteMessage(actor *models.Identity, req DeleteMessage) error {
	req.Channel = strings.TrimSpace(req.Channel)
	if err := r.check(req); err != nil {
		return err
	}
	msg, err := r.messages.Get(req.Channel, req.MessageID)
	if err != nil {
		return notFoundf("message not found")
	}
	if msg.AuthorID != actor.UserID && !actor.Admin {
		return forbiddenf("you can only delete your own messages")
	}
	if err := r.messages.Delete(req.Channel, req.MessageID); err != nil {
		return notFoundf("message not found")
	}
	r.broadcast(models.Event{Name: models.EventMessageDeleted, Data: models.MessageDeleted{MessageID: req.MessageID, Channel: req.Channel}}, "")
	return nil
}

func (r *Router) editMessage(actor *models.Identity, req EditMessage) error {
	req.Message = strings.TrimSpace(req.Message)
	req.Channel = strings.TrimSpace(req.Channel)
	if req.Message == "" {
		return validationf("message cannot be empty")
	}
	if err := r.check(req); err != nil {
		return err
	}
	msg, err := r.messages.Get(req.Channel, req.MessageID)
	if err != nil {
		return notFoundf("message not found")
	}
	// admins may delete other people's messages but not rewrite them
	if msg.AuthorID != actor.UserID {
		return forbiddenf("you can only edit your own messages")
	}
	if _, err := r.messages.Edit(req.Channel, req.MessageID, req.Message); err != nil {
		return notFoundf("message not found")
	}
	r.broadcast(models.Event{Name: models.EventMessageEdited, Data: models.MessageEdited{MessageID: req.MessageID, Channel: req.Channel, Message: req.Message}}, "")
	return nil
}

func (r *Router) clearHistory(actor *models.Identity, req ClearHistory) error {
	req.Channel = strings.TrimSpace(req.Channel)
	if err := r.check(req); err != nil {
		return err
	}
	switch req.ChannelType {
	case models.KindPublic:
		if !actor.Admin {
			return forbiddenf("only an administrator can clear public channel history")
		}
		if !isPublicChannel(req.Channel) {
			return notFoundf("channel not found")
		}
	case models.KindPrivate:
		chat, err := r.chats.GetPrivate(req.Channel)
		if err != nil {
			return notFoundf("chat not found")
		}
		if !chat.HasMember(actor.UserID) {
			return forbiddenf("you are not a member of this chat")
		}
	case models.KindGroup:
		group, err := r.chats.GetGroup(req.Channel)
		if err != nil {
			return notFoundf("group not found")
		}
		if !group.HasMember(actor.UserID) {
			return forbiddenf("you are not a member of this group")
		}
	}
	r.messages.DeleteChannel(req.Channel)
	r.broadcast(models.Event{Name: models.EventHistoryCleared, Data: models.HistoryCleared{Channel: req.Channel}}, "")
	return nil
}
