package chat

import (
	"errors"
	"log"
	"strings"

	"messenger/internal/models"
	"messenger/internal/repositories"
)

// RegisterIdentity creates an identity without involving any connection. It is
// used for the register command and for seeding the admin account.
func (r *Router) RegisterIdentity(username, password string) (models.Identity, error) {
	req := Register{Username: strings.TrimSpace(username), Password: strings.TrimSpace(password)}
	if err := r.check(req); err != nil {
		return models.Identity{}, err
	}

	if _, err := r.lookupIdentity(req.Username); err == nil {
		return models.Identity{}, conflictf("username %s is already taken", req.Username)
	}

	// hashing is slow; keep it outside the critical section
	hash, err := r.hasher.Hash(req.Password)
	if err != nil {
		return models.Identity{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	userID, err := r.uniqueUserID()
	if err != nil {
		return models.Identity{}, err
	}
	identity := models.Identity{
		Username:     req.Username,
		UserID:       userID,
		PasswordHash: hash,
		CreatedAt:    r.now(),
		Admin:        req.Username == models.AdminUsername,
	}
	if err := r.identities.Create(identity); err != nil {
		if errors.Is(err, repositories.ErrUsernameTaken) {
			return models.Identity{}, conflictf("username %s is already taken", req.Username)
		}
		return models.Identity{}, err
	}
	log.Printf("registered user=%s id=%s", identity.Username, identity.UserID)
	return identity, nil
}

func (r *Router) register(conn Conn, req Register) (models.Identity, error) {
	if conn.Closed() {
		return models.Identity{}, errConnClosed
	}
	identity, err := r.RegisterIdentity(req.Username, req.Password)
	if err != nil {
		return models.Identity{}, err
	}
	conn.Send(models.Event{Name: models.EventRegisterSuccess, Data: models.Notice{Message: "Registration successful, you can log in now."}})
	return identity, nil
}

func (r *Router) login(conn Conn, req Login) error {
	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)

	identity, err := r.lookupIdentity(username)
	if err != nil {
		return notFoundf("user not found")
	}
	if !r.hasher.Compare(identity.PasswordHash, password) {
		return newError(ErrAuth, "wrong password")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if conn.Closed() {
		return errConnClosed
	}
	current, err := r.identities.GetByUsername(username)
	if err != nil {
		return notFoundf("user not found")
	}
	identity = *current
	// ban may have landed while the hash was being compared
	if identity.Banned {
		return forbiddenf("you are banned")
	}
	if _, ok := r.presence.ByConn(conn.ID()); ok {
		return statef("this connection is already logged in")
	}
	if _, ok := r.presence.ConnForUser(identity.UserID); ok {
		return conflictf("user %s is already logged in from another connection", identity.Username)
	}

	session := models.Session{ConnID: conn.ID(), Username: identity.Username, UserID: identity.UserID, JoinedAt: r.now()}
	if err := r.presence.Add(session); err != nil {
		return conflictf("session already exists")
	}
	r.conns[conn.ID()] = conn
	log.Printf("login user=%s id=%s conn=%s", identity.Username, identity.UserID, conn.ID())

	conn.Send(models.Event{Name: models.EventAuthSuccess, Data: models.AuthSuccess{
		Username: identity.Username,
		UserID:   identity.UserID,
		IsMuted:  identity.IsMuted(r.now()),
		IsAdmin:  identity.Admin,
	}})
	r.broadcast(models.Event{Name: models.EventUserJoined, Data: models.UserRef{Username: identity.Username}}, conn.ID())
	r.pushPresence()
	r.appendSystem("👋 " + identity.Username + " joined the chat")
	return nil
}

// lookupIdentity returns a copy of the identity so it can be read after the
// lock is released.
func (r *Router) lookupIdentity(username string) (models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, err := r.identities.GetByUsername(username)
	if err != nil {
		return models.Identity{}, err
	}
	return *identity, nil
}
