package chat

import (
	"errors"
	"log"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"messenger/internal/models"
	"messenger/internal/observability"
	"messenger/internal/repositories"
)

// DefaultHistoryLimit is the number of messages returned when joining a conversation.
const DefaultHistoryLimit = 50

// Conn is a live client connection as seen by the router.
type Conn interface {
	ID() string
	// Send queues an event without blocking and reports whether it was accepted.
	Send(event models.Event) bool
	// Close flushes queued events, then closes the connection. Idempotent.
	Close()
	Closed() bool
}

// Options configures a Router.
type Options struct {
	Hasher       Hasher
	HistoryLimit int
	Clock        func() time.Time
	Auditor      Auditor
}

// Router owns every piece of shared chat state. All reads and writes of the
// credential store, presence table, conversation registry and message log happen
// while holding mu, so cross-table invariants hold at every unlock.
type Router struct {
	mu         sync.Mutex
	identities repositories.IdentityRepository
	presence   repositories.PresenceRepository
	chats      repositories.ChatRepository
	messages   repositories.MessageRepository
	conns      map[string]Conn

	hasher       Hasher
	historyLimit int
	now          func() time.Time
	auditor      Auditor
	validate     *validator.Validate
	newUserID    func() string
	newChatID    func() string
}

// NewRouter builds a Router over empty in-memory stores.
func NewRouter(opts Options) *Router {
	if opts.Hasher == nil {
		opts.Hasher = NewBcryptHasher(0)
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Router{
		identities:   repositories.NewIdentityRepo(),
		presence:     repositories.NewPresenceRepo(),
		chats:        repositories.NewChatRepo(),
		messages:     repositories.NewMessageRepo(),
		conns:        make(map[string]Conn),
		hasher:       opts.Hasher,
		historyLimit: opts.HistoryLimit,
		now:          opts.Clock,
		auditor:      opts.Auditor,
		validate:     newValidator(),
		newUserID:    randomUserID,
		newChatID:    randomChatID,
	}
}

// Dispatch runs one client command for conn. Failures are reported to conn as an
// error event and also returned so the transport can count them.
func (r *Router) Dispatch(conn Conn, cmd Command) error {
	var err error
	switch c := cmd.(type) {
	case Register:
		_, err = r.register(conn, c)
	case Login:
		err = r.login(conn, c)
	default:
		err = r.dispatchSession(conn, cmd)
	}
	if err != nil && !errors.Is(err, errConnClosed) {
		observability.IncCommandError(cmd.Name(), Code(err))
		conn.Send(models.Event{Name: errorEvent(cmd), Data: models.Notice{Message: err.Error(), Code: Code(err)}})
	}
	return err
}

func (r *Router) dispatchSession(conn Conn, cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn.Closed() {
		return errConnClosed
	}
	session, ok := r.presence.ByConn(conn.ID())
	if !ok {
		return newError(ErrAuth, "authentication required")
	}
	actor, err := r.identities.GetByUsername(session.Username)
	if err != nil {
		return newError(ErrAuth, "authentication required")
	}

	switch c := cmd.(type) {
	case Logout:
		r.endSession(conn.ID())
		conn.Send(models.Event{Name: models.EventLoggedOut, Data: models.UserRef{Username: actor.Username}})
		return nil
	case JoinChannel:
		return r.joinChannel(conn, c)
	case SendMessage:
		return r.sendMessage(actor, c)
	case CreatePrivateChat:
		return r.createPrivateChat(conn, actor, c)
	case GetPrivateChats:
		r.pushPrivateChats(actor.UserID)
		return nil
	case LeavePrivateChat:
		return r.leavePrivateChat(conn, actor, c)
	case DeletePrivateChat:
		return r.deletePrivateChat(actor, c)
	case CreateGroup:
		return r.createGroup(conn, actor, c)
	case GetGroups:
		r.pushGroups(actor.UserID)
		return nil
	case LeaveGroup:
		return r.leaveGroup(conn, actor, c)
	case DeleteGroup:
		return r.deleteGroup(actor, c)
	case DeleteMessage:
		return r.deleteMessage(actor, c)
	case EditMessage:
		return r.editMessage(actor, c)
	case ClearHistory:
		return r.clearHistory(actor, c)
	}
	return validationf("unknown command %q", cmd.Name())
}

// Disconnect drops the session bound to conn, if any. Safe to call repeatedly.
func (r *Router) Disconnect(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endSession(conn.ID())
}

// endSession removes the session of connID and announces the departure.
func (r *Router) endSession(connID string) {
	session, ok := r.presence.Remove(connID)
	if !ok {
		return
	}
	delete(r.conns, connID)
	log.Printf("session ended user=%s conn=%s", session.Username, connID)
	r.broadcast(models.Event{Name: models.EventUserLeft, Data: models.UserRef{Username: session.Username}}, "")
	r.pushPresence()
}

// terminate sends a final notice to the session of connID and closes it in the
// same critical section, so nothing is routed through it afterwards.
func (r *Router) terminate(connID string, notice models.Event) {
	conn, ok := r.conns[connID]
	if ok {
		conn.Send(notice)
		conn.Close()
		delete(r.conns, connID)
	}
	r.presence.Remove(connID)
}

func (r *Router) broadcast(event models.Event, exceptConnID string) {
	for _, session := range r.presence.List() {
		if session.ConnID == exceptConnID {
			continue
		}
		if conn, ok := r.conns[session.ConnID]; ok {
			conn.Send(event)
		}
	}
}

func (r *Router) sendToUser(userID string, event models.Event) bool {
	connID, ok := r.presence.ConnForUser(userID)
	if !ok {
		return false
	}
	conn, ok := r.conns[connID]
	if !ok {
		return false
	}
	return conn.Send(event)
}

func (r *Router) notice(userID, text string) {
	r.sendToUser(userID, models.Event{Name: models.EventSystemMessage, Data: models.Notice{Message: text}})
}

func (r *Router) pushPresence() {
	sessions := r.presence.List()
	users := make([]models.UserRef, 0, len(sessions))
	for _, s := range sessions {
		users = append(users, models.UserRef{Username: s.Username, UserID: s.UserID})
	}
	observability.SetOnline(len(sessions))
	r.broadcast(models.Event{Name: models.EventUsersUpdate, Data: models.UsersUpdate{Users: users}}, "")
}

// appendSystem logs a system line to the general channel and shows it to everyone.
func (r *Router) appendSystem(text string) models.Message {
	msg := r.messages.Append(models.Message{
		Username:  models.SystemAuthor,
		Text:      text,
		CreatedAt: r.now(),
		Channel:   models.GeneralChannel,
		Kind:      models.KindPublic,
		Type:      models.MessageSystem,
	})
	r.broadcast(models.Event{Name: models.EventNewMessage, Data: msg}, "")
	return msg
}

func (r *Router) usernameOf(userID string) string {
	identity, err := r.identities.GetByUserID(userID)
	if err != nil {
		return "unknown"
	}
	return identity.Username
}

func (r *Router) check(cmd any) error {
	err := r.validate.Struct(cmd)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return validationf("invalid request")
	}
	fe := fieldErrs[0]
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return validationf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return validationf("%s must contain at least %s entries", field, fe.Param())
		}
		return validationf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return validationf("%s must be one of: %s", field, fe.Param())
	}
	return validationf("%s is invalid", field)
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}
