package repositories

import (
	"errors"
	"slices"

	"messenger/internal/models"
)

var ErrSessionExists = errors.New("session already exists")

// PresenceRepository maps live connections to authenticated identities in both
// directions.
type PresenceRepository interface {
	Add(session models.Session) error
	Remove(connID string) (models.Session, bool)
	ByConn(connID string) (models.Session, bool)
	ConnForUser(userID string) (string, bool)
	List() []models.Session
	Count() int
}

// PresenceRepo holds at most one session per connection and per identity.
type PresenceRepo struct {
	byConn map[string]models.Session
	byUser map[string]string
	order  []string
}

// NewPresenceRepo constructs an empty PresenceRepo.
func NewPresenceRepo() *PresenceRepo {
	return &PresenceRepo{
		byConn: make(map[string]models.Session),
		byUser: make(map[string]string),
	}
}

// Add binds a connection to an identity.
func (r *PresenceRepo) Add(session models.Session) error {
	if _, ok := r.byConn[session.ConnID]; ok {
		return ErrSessionExists
	}
	if _, ok := r.byUser[session.UserID]; ok {
		return ErrSessionExists
	}
	r.byConn[session.ConnID] = session
	r.byUser[session.UserID] = session.ConnID
	r.order = append(r.order, session.ConnID)
	return nil
}

// Remove drops the session of connID, if any.
func (r *PresenceRepo) Remove(connID string) (models.Session, bool) {
	session, ok := r.byConn[connID]
	if !ok {
		return models.Session{}, false
	}
	delete(r.byConn, connID)
	if r.byUser[session.UserID] == connID {
		delete(r.byUser, session.UserID)
	}
	if idx := slices.Index(r.order, connID); idx >= 0 {
		r.order = slices.Delete(r.order, idx, idx+1)
	}
	return session, true
}

// ByConn resolves the identity authenticated on connID.
func (r *PresenceRepo) ByConn(connID string) (models.Session, bool) {
	session, ok := r.byConn[connID]
	return session, ok
}

// ConnForUser resolves the live connection of an identity.
func (r *PresenceRepo) ConnForUser(userID string) (string, bool) {
	connID, ok := r.byUser[userID]
	return connID, ok
}

// List returns sessions in login order.
func (r *PresenceRepo) List() []models.Session {
	out := make([]models.Session, 0, len(r.order))
	for _, connID := range r.order {
		out = append(out, r.byConn[connID])
	}
	return out
}

// Count returns the number of live sessions.
func (r *PresenceRepo) Count() int {
	return len(r.order)
}
