package chat

import (
	"log"
	"strings"

	"messenger/internal/models"
)

func (r *Router) createPrivateChat(conn Conn, actor *models.Identity, req CreatePrivateChat) error {
	req.TargetUserID = strings.TrimSpace(req.TargetUserID)
	if err := r.check(req); err != nil {
		return err
	}
	target, err := r.identities.GetByUserID(req.TargetUserID)
	if err != nil {
		return notFoundf("user with id %s not found", req.TargetUserID)
	}
	if target.UserID == actor.UserID {
		return validationf("cannot create a chat with yourself")
	}
	if r.chats.PrivateExists(actor.UserID, target.UserID) {
		return conflictf("private chat with %s already exists", target.Username)
	}

	chat := models.Conversation{
		ID:        r.uniqueChatID(),
		Kind:      models.KindPrivate,
		CreatorID: actor.UserID,
		Members:   []string{actor.UserID, target.UserID},
		CreatedAt: r.now(),
	}
	if err := r.chats.CreatePrivate(chat); err != nil {
		return conflictf("private chat with %s already exists", target.Username)
	}
	log.Printf("private chat created id=%s between=%s,%s", chat.ID, actor.Username, target.Username)

	conn.Send(models.Event{Name: models.EventPrivateChatCreated, Data: models.PrivateChatCreated{ChatID: chat.ID, OtherUser: target.Username}})
	r.sendToUser(target.UserID, models.Event{Name: models.EventPrivateChatCreated, Data: models.PrivateChatCreated{ChatID: chat.ID, OtherUser: actor.Username}})
	r.pushPrivateChats(actor.UserID)
	r.pushPrivateChats(target.UserID)
	return nil
}

func (r *Router) pushPrivateChats(userID string) {
	chats := r.chats.ListPrivateForUser(userID)
	summaries := make([]models.ConversationSummary, 0, len(chats))
	for _, c := range chats {
		summaries = append(summaries, models.ConversationSummary{
			ID:        c.ID,
			Name:      r.usernameOf(c.OtherMember(userID)),
			IsCreator: c.CreatorID == userID,
		})
	}
	r.sendToUser(userID, models.Event{Name: models.EventPrivateChatsList, Data: models.PrivateChatsList{Chats: summaries}})
}

func (r *Router) memberChat(chatID, userID string) (*models.Conversation, error) {
	chat, err := r.chats.GetPrivate(strings.TrimSpace(chatID))
	if err != nil {
		return nil, notFoundf("chat not found")
	}
	if !chat.HasMember(userID) {
		return nil, forbiddenf("you are not a member of this chat")
	}
	return chat, nil
}

// destroy removes a conversation together with its messages.
func (r *Router) destroy(id string) {
	r.chats.Delete(id)
	n := r.messages.DeleteChannel(id)
	log.Printf("conversation destroyed id=%s messages=%d", id, n)
}

func (r *Router) leavePrivateChat(conn Conn, actor *models.Identity, req LeavePrivateChat) error {
	if err := r.check(req); err != nil {
		return err
	}
	chat, err := r.memberChat(req.ChatID, actor.UserID)
	if err != nil {
		return err
	}
	chat.RemoveMember(actor.UserID)
	remaining := append([]string(nil), chat.Members...)

	if len(remaining) <= 1 {
		r.destroy(chat.ID)
		for _, member := range remaining {
			r.sendToUser(member, models.Event{Name: models.EventPrivateChatDeleted, Data: models.ChatRef{ChatID: chat.ID}})
		}
	}
	for _, member := range remaining {
		r.pushPrivateChats(member)
	}

	conn.Send(models.Event{Name: models.EventSystemMessage, Data: models.Notice{Message: "You left the private chat"}})
	r.pushPrivateChats(actor.UserID)
	return nil
}

func (r *Router) deletePrivateChat(actor *models.Identity, req DeletePrivateChat) error {
	if err := r.check(req); err != nil {
		return err
	}
	chat, err := r.chats.GetPrivate(strings.TrimSpace(req.ChatID))
	if err != nil {
		return notFoundf("chat not found")
	}
	if chat.CreatorID != actor.UserID {
		return forbiddenf("only the creator can delete this chat")
	}
	members := append([]string(nil), chat.Members...)
	r.destroy(chat.ID)
	for _, member := range members {
		r.sendToUser(member, models.Event{Name: models.EventPrivateChatDeleted, Data: models.ChatRef{ChatID: chat.ID}})
		r.pushPrivateChats(member)
	}
	return nil
}
