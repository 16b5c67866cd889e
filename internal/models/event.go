package models

// Outbound event names.
const (
	EventRegisterSuccess    = "register_success"
	EventRegisterError      = "register_error"
	EventAuthSuccess        = "auth_success"
	EventAuthError          = "auth_error"
	EventLoggedOut          = "logged_out"
	EventUserJoined         = "user_joined"
	EventUserLeft           = "user_left"
	EventUsersUpdate        = "users_update"
	EventChatHistory        = "chat_history"
	EventNewMessage         = "new_message"
	EventSystemMessage      = "system_message"
	EventPrivateChatCreated = "private_chat_created"
	EventPrivateChatError   = "private_chat_error"
	EventPrivateChatDeleted = "private_chat_deleted"
	EventPrivateChatsList   = "private_chats_list"
	EventGroupCreated       = "group_created"
	EventGroupError         = "group_error"
	EventGroupsList         = "groups_list"
	EventMessageDeleted     = "message_deleted"
	EventMessageEdited      = "message_edited"
	EventHistoryCleared     = "history_cleared"
	EventUserBanned         = "user_banned"
	EventUserKicked         = "user_kicked"
	EventUserMuted          = "user_muted"
)

// Event is one frame sent to a connection.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

// Notice is the payload of error and system_message events.
type Notice struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// AuthSuccess is sent after a successful login.
type AuthSuccess struct {
	Username string `json:"username"`
	UserID   string `json:"user_id"`
	IsMuted  bool   `json:"is_muted"`
	IsAdmin  bool   `json:"is_admin"`
}

// UserRef names an identity in presence events.
type UserRef struct {
	Username string `json:"username"`
	UserID   string `json:"user_id,omitempty"`
}

// UsersUpdate is the presence list.
type UsersUpdate struct {
	Users []UserRef `json:"users"`
}

// ChatHistory answers join_channel.
type ChatHistory struct {
	Channel  string    `json:"channel"`
	Messages []Message `json:"messages"`
}

// PrivateChatCreated is pushed to both parties.
type PrivateChatCreated struct {
	ChatID    string `json:"chat_id"`
	OtherUser string `json:"other_user"`
}

// ChatRef names a conversation.
type ChatRef struct {
	ChatID string `json:"chat_id"`
}

// PrivateChatsList is the per-user private chat list.
type PrivateChatsList struct {
	Chats []ConversationSummary `json:"chats"`
}

// GroupCreated is pushed to every member.
type GroupCreated struct {
	ChatID    string `json:"chat_id"`
	GroupName string `json:"group_name"`
}

// GroupsList is the per-user group list.
type GroupsList struct {
	Groups []ConversationSummary `json:"groups"`
}

// MessageDeleted is broadcast after a point deletion.
type MessageDeleted struct {
	MessageID int64  `json:"message_id"`
	Channel   string `json:"channel"`
}

// MessageEdited is broadcast after an edit.
type MessageEdited struct {
	MessageID int64  `json:"message_id"`
	Channel   string `json:"channel"`
	Message   string `json:"message"`
}

// HistoryCleared is broadcast after clear_history.
type HistoryCleared struct {
	Channel string `json:"channel"`
}
