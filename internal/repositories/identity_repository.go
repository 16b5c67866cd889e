package repositories

import (
	"errors"

	"messenger/internal/models"
)

var (
	ErrIdentityNotFound = errors.New("identity not found")
	ErrUsernameTaken    = errors.New("username already registered")
	ErrUserIDTaken      = errors.New("user id already assigned")
)

// IdentityRepository abstracts the credential store.
type IdentityRepository interface {
	Create(identity models.Identity) error
	GetByUsername(username string) (*models.Identity, error)
	GetByUserID(userID string) (*models.Identity, error)
	UserIDExists(userID string) bool
	List() []models.Identity
	Count() int
}

// IdentityRepo is an in-memory IdentityRepository. It is not safe for concurrent
// use; the router serializes every access.
type IdentityRepo struct {
	byUsername map[string]*models.Identity
	byUserID   map[string]*models.Identity
	order      []string
}

// NewIdentityRepo constructs an empty IdentityRepo.
func NewIdentityRepo() *IdentityRepo {
	return &IdentityRepo{
		byUsername: make(map[string]*models.Identity),
		byUserID:   make(map[string]*models.Identity),
	}
}

// Create stores a new identity. Usernames and user ids are unique.
func (r *IdentityRepo) Create(identity models.Identity) error {
	if _, ok := r.byUsername[identity.Username]; ok {
		return ErrUsernameTaken
	}
	if _, ok := r.byUserID[identity.UserID]; ok {
		return ErrUserIDTaken
	}
	stored := identity
	r.byUsername[identity.Username] = &stored
	r.byUserID[identity.UserID] = &stored
	r.order = append(r.order, identity.Username)
	return nil
}

// GetByUsername returns the stored identity; the pointer is live and may be mutated
// by the caller holding the router lock.
func (r *IdentityRepo) GetByUsername(username string) (*models.Identity, error) {
	identity, ok := r.byUsername[username]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	return identity, nil
}

// GetByUserID looks an identity up by its public id.
func (r *IdentityRepo) GetByUserID(userID string) (*models.Identity, error) {
	identity, ok := r.byUserID[userID]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	return identity, nil
}

// UserIDExists reports whether the public id is assigned.
func (r *IdentityRepo) UserIDExists(userID string) bool {
	_, ok := r.byUserID[userID]
	return ok
}

// List returns copies of all identities in registration order.
func (r *IdentityRepo) List() []models.Identity {
	out := make([]models.Identity, 0, len(r.order))
	for _, username := range r.order {
		out = append(out, *r.byUsername[username])
	}
	return out
}

// Count returns the number of registered identities.
func (r *IdentityRepo) Count() int {
	return len(r.order)
}
