package chat

import "messenger/internal/models"

// Command is an inbound client request. The set of implementations is closed;
// Dispatch handles each one.
type Command interface {
	Name() string
}

type Register struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required"`
}

type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Logout struct{}

type JoinChannel struct {
	ChannelID   string                  `json:"channel_id" validate:"required"`
	ChannelType models.ConversationKind `json:"channel_type"`
}

type SendMessage struct {
	Channel     string                  `json:"channel" validate:"required"`
	Message     string                  `json:"message"`
	ChannelType models.ConversationKind `json:"channel_type"`
}

type CreatePrivateChat struct {
	TargetUserID string `json:"target_user_id" validate:"required"`
}

type GetPrivateChats struct{}

type LeavePrivateChat struct {
	ChatID string `json:"chat_id" validate:"required"`
}

type DeletePrivateChat struct {
	ChatID string `json:"chat_id" validate:"required"`
}

type CreateGroup struct {
	GroupName string   `json:"group_name" validate:"required"`
	Members   []string `json:"members" validate:"min=1"`
}

type GetGroups struct{}

type LeaveGroup struct {
	ChatID string `json:"chat_id" validate:"required"`
}

type DeleteGroup struct {
	ChatID string `json:"chat_id" validate:"required"`
}

type DeleteMessage struct {
	MessageID int64  `json:"message_id" validate:"required"`
	Channel   string `json:"channel" validate:"required"`
}

type EditMessage struct {
	MessageID int64  `json:"message_id" validate:"required"`
	Channel   string `json:"channel" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

type ClearHistory struct {
	Channel     string                  `json:"channel" validate:"required"`
	ChannelType models.ConversationKind `json:"channel_type" validate:"oneof=public private group"`
}

func (Register) Name() string          { return "register" }
func (Login) Name() string             { return "login" }
func (Logout) Name() string            { return "logout" }
func (JoinChannel) Name() string       { return "join_channel" }
func (SendMessage) Name() string       { return "send_message" }
func (CreatePrivateChat) Name() string { return "create_private_chat" }
func (GetPrivateChats) Name() string   { return "get_private_chats" }
func (LeavePrivateChat) Name() string  { return "leave_private_chat" }
func (DeletePrivateChat) Name() string { return "delete_private_chat" }
func (CreateGroup) Name() string       { return "create_group" }
func (GetGroups) Name() string         { return "get_groups" }
func (LeaveGroup) Name() string        { return "leave_group" }
func (DeleteGroup) Name() string       { return "delete_group" }
func (DeleteMessage) Name() string     { return "delete_message" }
func (EditMessage) Name() string       { return "edit_message" }
func (ClearHistory) Name() string      { return "clear_history" }

// errorEvent picks the event used to report a failed command.
func errorEvent(cmd Command) string {
	switch cmd.(type) {
	case Register:
		return models.EventRegisterError
	case Login:
		return models.EventAuthError
	case CreatePrivateChat:
		return models.EventPrivateChatError
	case CreateGroup:
		return models.EventGroupError
	}
	return models.EventSystemMessage
}
