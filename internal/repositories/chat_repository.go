package repositories

import (
	"errors"
	"slices"

	"messenger/internal/models"
)

var (
	ErrChatNotFound  = errors.New("chat not found")
	ErrGroupNotFound = errors.New("group not found")
	ErrChatExists    = errors.New("private chat already exists")
)

// ChatRepository is the conversation registry for private chats and groups.
type ChatRepository interface {
	CreatePrivate(chat models.Conversation) error
	CreateGroup(group models.Conversation) error
	GetPrivate(chatID string) (*models.Conversation, error)
	GetGroup(groupID string) (*models.Conversation, error)
	PrivateExists(userA, userB string) bool
	IDExists(id string) bool
	Delete(id string) bool
	ListPrivateForUser(userID string) []models.Conversation
	ListGroupsForUser(userID string) []models.Conversation
	CountPrivate() int
	CountGroups() int
}

// ChatRepo is an in-memory ChatRepository, serialized by the router.
type ChatRepo struct {
	private map[string]*models.Conversation
	groups  map[string]*models.Conversation
	pairs   map[pairKey]string
	order   []string
}

type pairKey struct{ low, high string }

func newPairKey(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{low: a, high: b}
}

// NewChatRepo constructs an empty ChatRepo.
func NewChatRepo() *ChatRepo {
	return &ChatRepo{
		private: make(map[string]*models.Conversation),
		groups:  make(map[string]*models.Conversation),
		pairs:   make(map[pairKey]string),
	}
}

// CreatePrivate stores a two-member chat. At most one chat exists per unordered pair.
func (r *ChatRepo) CreatePrivate(chat models.Conversation) error {
	if len(chat.Members) != 2 {
		return errors.New("private chat needs exactly two members")
	}
	key := newPairKey(chat.Members[0], chat.Members[1])
	if _, ok := r.pairs[key]; ok {
		return ErrChatExists
	}
	stored := chat
	stored.Members = slices.Clone(chat.Members)
	r.private[chat.ID] = &stored
	r.pairs[key] = chat.ID
	r.order = append(r.order, chat.ID)
	return nil
}

// CreateGroup stores a group conversation.
func (r *ChatRepo) CreateGroup(group models.Conversation) error {
	stored := group
	stored.Members = slices.Clone(group.Members)
	r.groups[group.ID] = &stored
	r.order = append(r.order, group.ID)
	return nil
}

// GetPrivate fetches a private chat. The returned pointer is live.
func (r *ChatRepo) GetPrivate(chatID string) (*models.Conversation, error) {
	chat, ok := r.private[chatID]
	if !ok {
		return nil, ErrChatNotFound
	}
	return chat, nil
}

// GetGroup fetches a group. The returned pointer is live.
func (r *ChatRepo) GetGroup(groupID string) (*models.Conversation, error) {
	group, ok := r.groups[groupID]
	if !ok {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// PrivateExists reports whether a private chat joins the two identities.
func (r *ChatRepo) PrivateExists(userA, userB string) bool {
	_, ok := r.pairs[newPairKey(userA, userB)]
	return ok
}

// IDExists reports whether id names any dynamic conversation.
func (r *ChatRepo) IDExists(id string) bool {
	_, p := r.private[id]
	_, g := r.groups[id]
	return p || g
}

// Delete destroys a private chat or group and reports whether it existed.
func (r *ChatRepo) Delete(id string) bool {
	if _, ok := r.private[id]; ok {
		delete(r.private, id)
		for key, chatID := range r.pairs {
			if chatID == id {
				delete(r.pairs, key)
			}
		}
	} else if _, ok := r.groups[id]; ok {
		delete(r.groups, id)
	} else {
		return false
	}
	if idx := slices.Index(r.order, id); idx >= 0 {
		r.order = slices.Delete(r.order, idx, idx+1)
	}
	return true
}

// ListPrivateForUser returns the private chats userID belongs to, oldest first.
func (r *ChatRepo) ListPrivateForUser(userID string) []models.Conversation {
	return r.listFor(r.private, userID)
}

// ListGroupsForUser returns the groups userID belongs to, oldest first.
func (r *ChatRepo) ListGroupsForUser(userID string) []models.Conversation {
	return r.listFor(r.groups, userID)
}

func (r *ChatRepo) listFor(set map[string]*models.Conversation, userID string) []models.Conversation {
	var out []models.Conversation
	for _, id := range r.order {
		conv, ok := set[id]
		if !ok || !conv.HasMember(userID) {
			continue
		}
		copied := *conv
		copied.Members = slices.Clone(conv.Members)
		out = append(out, copied)
	}
	return out
}

// CountPrivate returns the number of live private chats.
func (r *ChatRepo) CountPrivate() int {
	return len(r.private)
}

// CountGroups returns the number of live groups.
func (r *ChatRepo) CountGroups() int {
	return len(r.groups)
}
