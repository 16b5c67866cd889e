package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger/internal/models"
)

type fakeConn struct {
	id     string
	mu     sync.Mutex
	events []models.Event
	closed bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(event models.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.events = append(c.events, event)
	return true
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) named(name string) []models.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Event
	for _, e := range c.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func (c *fakeConn) last(t *testing.T, name string) models.Event {
	t.Helper()
	events := c.named(name)
	require.NotEmpty(t, events, "no %s event on %s", name, c.id)
	return events[len(events)-1]
}

func (c *fakeConn) snapshot() []models.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Event(nil), c.events...)
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

// plainHasher keeps tests fast; bcrypt is covered separately.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func (plainHasher) Compare(hash, password string) bool { return hash == "plain:"+password }

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingAuditor struct {
	mu      sync.Mutex
	texts   []string
	targets []*string
}

func (a *recordingAuditor) Emit(_ context.Context, _, text, _ string, userID *string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.texts = append(a.texts, text)
	a.targets = append(a.targets, userID)
}

type harness struct {
	router  *Router
	clock   *testClock
	auditor *recordingAuditor
	conns   int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	auditor := &recordingAuditor{}
	router := NewRouter(Options{Hasher: plainHasher{}, Clock: clock.Now, Auditor: auditor})
	return &harness{router: router, clock: clock, auditor: auditor}
}

// withUserIDs makes registration hand out ids in order.
func (h *harness) withUserIDs(ids ...string) {
	next := 0
	h.router.newUserID = func() string {
		id := ids[next%len(ids)]
		next++
		return id
	}
}

func (h *harness) register(t *testing.T, username string) models.Identity {
	t.Helper()
	identity, err := h.router.RegisterIdentity(username, "pw123")
	require.NoError(t, err)
	return identity
}

func (h *harness) connect() *fakeConn {
	h.conns++
	return newFakeConn(fmt.Sprintf("conn-%d", h.conns))
}

func (h *harness) login(t *testing.T, username string) *fakeConn {
	t.Helper()
	conn := h.connect()
	require.NoError(t, h.router.Dispatch(conn, Login{Username: username, Password: "pw123"}))
	return conn
}

func (h *harness) online(t *testing.T, username string) (*fakeConn, models.Identity) {
	t.Helper()
	identity := h.register(t, username)
	return h.login(t, username), identity
}

func TestRegisterThenLoginOnce(t *testing.T) {
	h := newHarness(t)
	conn := h.connect()

	require.NoError(t, h.router.Dispatch(conn, Register{Username: "alice", Password: "secret"}))
	assert.Len(t, conn.named(models.EventRegisterSuccess), 1)

	err := h.router.Dispatch(conn, Register{Username: "alice", Password: "other"})
	require.ErrorIs(t, err, ErrConflict)
	notice := conn.last(t, models.EventRegisterError).Data.(models.Notice)
	assert.Equal(t, "conflict", notice.Code)

	require.NoError(t, h.router.Dispatch(conn, Login{Username: "alice", Password: "secret"}))
	auth := conn.last(t, models.EventAuthSuccess).Data.(models.AuthSuccess)
	assert.Equal(t, "alice", auth.Username)
	assert.Len(t, auth.UserID, 6)
	assert.False(t, auth.IsAdmin)

	err = h.router.Dispatch(conn, Login{Username: "alice", Password: "secret"})
	assert.ErrorIs(t, err, ErrState)
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)
	conn := h.connect()

	err := h.router.Dispatch(conn, Register{Username: "al", Password: "pw"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "at least 3")

	err = h.router.Dispatch(conn, Register{Username: "alice", Password: "   "})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "password is required")

	assert.Len(t, conn.named(models.EventRegisterError), 2)
	assert.Equal(t, 0, h.router.Stats().Identities)
}

func TestAdminFlagOnlyForReservedName(t *testing.T) {
	h := newHarness(t)
	admin := h.register(t, "admin")
	other := h.register(t, "Admin")

	assert.True(t, admin.Admin)
	assert.False(t, other.Admin)
}

func TestLoginFailures(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice")
	conn := h.connect()

	err := h.router.Dispatch(conn, Login{Username: "nobody", Password: "pw123"})
	require.ErrorIs(t, err, ErrNotFound)

	err = h.router.Dispatch(conn, Login{Username: "alice", Password: "wrong"})
	require.ErrorIs(t, err, ErrAuth)
	assert.Equal(t, "auth", conn.last(t, models.EventAuthError).Data.(models.Notice).Code)

	h.login(t, "alice")
	err = h.router.Dispatch(conn, Login{Username: "alice", Password: "pw123"})
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, h.router.Stats().Sessions)
}

func TestUserIDsAreUnique(t *testing.T) {
	h := newHarness(t)
	h.withUserIDs("123456", "123456", "123456", "654321")

	first := h.register(t, "alice")
	second := h.register(t, "bob")

	assert.Equal(t, "123456", first.UserID)
	assert.Equal(t, "654321", second.UserID)
}

func TestCommandsRequireSession(t *testing.T) {
	h := newHarness(t)
	conn := h.connect()

	err := h.router.Dispatch(conn, SendMessage{Channel: "general", Message: "hi"})
	require.ErrorIs(t, err, ErrAuth)
	notice := conn.last(t, models.EventSystemMessage).Data.(models.Notice)
	assert.Equal(t, "auth", notice.Code)
	assert.Equal(t, 0, h.router.Stats().Messages)
}

func TestLoginAnnouncesPresence(t *testing.T) {
	h := newHarness(t)
	alice, _ := h.online(t, "alice")
	alice.reset()

	bob, _ := h.online(t, "bob")

	joined := alice.last(t, models.EventUserJoined).Data.(models.UserRef)
	assert.Equal(t, "bob", joined.Username)
	assert.Empty(t, bob.named(models.EventUserJoined))

	update := bob.last(t, models.EventUsersUpdate).Data.(models.UsersUpdate)
	require.Len(t, update.Users, 2)
	assert.Equal(t, "alice", update.Users[0].Username)

	welcome := alice.last(t, models.EventNewMessage).Data.(models.Message)
	assert.Equal(t, models.MessageSystem, welcome.Type)
	assert.Equal(t, models.SystemAuthor, welcome.Username)
	assert.Equal(t, "👋 bob joined the chat", welcome.Text)
}

func TestDisconnectIsIdempotent(t *testing.T) {
	h := newHarness(t)
	alice, _ := h.online(t, "alice")
	bob, _ := h.online(t, "bob")
	alice.reset()

	h.router.Disconnect(bob)
	h.router.Disconnect(bob)

	assert.Len(t, alice.named(models.EventUserLeft), 1)
	assert.Len(t, alice.named(models.EventUsersUpdate), 1)
	assert.Equal(t, 1, h.router.Stats().Sessions)
}

func TestLogoutKeepsConnection(t *testing.T) {
	h := newHarness(t)
	alice, _ := h.online(t, "alice")

	require.NoError(t, h.router.Dispatch(alice, Logout{}))
	assert.Len(t, alice.named(models.EventLoggedOut), 1)
	assert.False(t, alice.Closed())

	err := h.router.Dispatch(alice, Logout{})
	require.ErrorIs(t, err, ErrAuth)

	require.NoError(t, h.router.Dispatch(alice, Login{Username: "alice", Password: "pw123"}))
}

func TestClosedConnectionGetsNothing(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice")
	conn := h.connect()
	conn.Close()

	err := h.router.Dispatch(conn, Login{Username: "alice", Password: "pw123"})
	require.ErrorIs(t, err, errConnClosed)
	assert.Equal(t, 0, conn.count())
	assert.Equal(t, 0, h.router.Stats().Sessions)
}
