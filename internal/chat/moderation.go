package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"messenger/internal/models"
	"messenger/internal/observability"
)

// Auditor records operator actions outside the process.
type Auditor interface {
	Emit(ctx context.Context, level, text, requestID string, userID *string)
}

// OperatorCommand is a moderation action issued from the operator console or
// the admin endpoint. The set of implementations is closed.
type OperatorCommand interface {
	Name() string
}

type ListIdentities struct{}

type ListSessions struct{}

type Ban struct{ Username string }

type Unban struct{ Username string }

type Kick struct{ Username string }

type Mute struct {
	Username string
	Minutes  int
}

type Unmute struct{ Username string }

type ForceTerminate struct{ Username string }

type Broadcast struct{ Text string }

func (ListIdentities) Name() string { return "list" }
func (ListSessions) Name() string   { return "online" }
func (Ban) Name() string            { return "ban" }
func (Unban) Name() string          { return "unban" }
func (Kick) Name() string           { return "kick" }
func (Mute) Name() string           { return "mute" }
func (Unmute) Name() string         { return "unmute" }
func (ForceTerminate) Name() string { return "kill" }
func (Broadcast) Name() string      { return "broadcast" }

// OperatorResult is what the operator sees after a command.
type OperatorResult struct {
	Message    string            `json:"message,omitempty"`
	Identities []models.Identity `json:"identities,omitempty"`
	Sessions   []models.Session  `json:"sessions,omitempty"`
}

// Operate runs one moderation command. State changes and notifications happen
// under the router lock; the audit record is emitted after it is released.
func (r *Router) Operate(ctx context.Context, requestID string, cmd OperatorCommand) (OperatorResult, error) {
	result, target, err := r.operateLocked(cmd)

	if err != nil {
		log.Printf("operator command failed: cmd=%s err=%v", cmd.Name(), err)
		return OperatorResult{}, err
	}
	switch cmd.(type) {
	case ListIdentities, ListSessions:
	default:
		observability.IncModeration(cmd.Name())
		log.Printf("operator command: cmd=%s result=%q", cmd.Name(), result.Message)
		if r.auditor != nil {
			r.auditor.Emit(ctx, "info", result.Message, requestID, target)
		}
	}
	return result, nil
}

func (r *Router) operateLocked(cmd OperatorCommand) (OperatorResult, *string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.operate(cmd)
}

func (r *Router) operate(cmd OperatorCommand) (OperatorResult, *string, error) {
	switch c := cmd.(type) {
	case ListIdentities:
		return OperatorResult{Identities: r.identities.List()}, nil, nil
	case ListSessions:
		return OperatorResult{Sessions: r.presence.List()}, nil, nil
	case Broadcast:
		text := strings.TrimSpace(c.Text)
		if text == "" {
			return OperatorResult{}, nil, validationf("broadcast text is required")
		}
		r.appendSystem("📢 ADMIN: " + text)
		return OperatorResult{Message: "Message sent to everyone: " + text}, nil, nil
	}

	username, minutes := "", 0
	switch c := cmd.(type) {
	case Ban:
		username = c.Username
	case Unban:
		username = c.Username
	case Kick:
		username = c.Username
	case Mute:
		username, minutes = c.Username, c.Minutes
	case Unmute:
		username = c.Username
	case ForceTerminate:
		username = c.Username
	default:
		return OperatorResult{}, nil, validationf("unknown command %q", cmd.Name())
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return OperatorResult{}, nil, validationf("username is required")
	}
	identity, err := r.identities.GetByUsername(username)
	if err != nil {
		return OperatorResult{}, nil, notFoundf("user %s not found", username)
	}
	target := identity.UserID

	switch cmd.(type) {
	case Ban:
		identity.Banned = true
		if connID, ok := r.presence.ConnForUser(identity.UserID); ok {
			r.terminate(connID, models.Event{Name: models.EventUserBanned, Data: models.UserRef{Username: username}})
		}
		r.appendSystem(fmt.Sprintf("🚫 User %s was banned by the administrator", username))
		r.pushPresence()
		return OperatorResult{Message: fmt.Sprintf("User %s banned", username)}, &target, nil

	case Unban:
		identity.Banned = false
		return OperatorResult{Message: fmt.Sprintf("User %s unbanned", username)}, &target, nil

	case Kick:
		connID, ok := r.presence.ConnForUser(identity.UserID)
		if !ok {
			return OperatorResult{}, nil, notFoundf("user %s is not online", username)
		}
		r.terminate(connID, models.Event{Name: models.EventUserKicked, Data: models.UserRef{Username: username}})
		r.appendSystem(fmt.Sprintf("👢 User %s was kicked by the administrator", username))
		r.pushPresence()
		return OperatorResult{Message: fmt.Sprintf("User %s kicked", username)}, &target, nil

	case Mute:
		if minutes <= 0 {
			return OperatorResult{}, nil, validationf("minutes must be a positive number")
		}
		until := r.now().Add(time.Duration(minutes) * time.Minute)
		identity.MutedUntil = &until
		r.sendToUser(identity.UserID, models.Event{Name: models.EventUserMuted, Data: models.UserRef{Username: username}})
		r.appendSystem(fmt.Sprintf("🔇 User %s muted for %d minutes", username, minutes))
		return OperatorResult{Message: fmt.Sprintf("User %s muted for %d minutes", username, minutes)}, &target, nil

	case Unmute:
		identity.MutedUntil = nil
		return OperatorResult{Message: fmt.Sprintf("User %s unmuted", username)}, &target, nil

	case ForceTerminate:
		connID, ok := r.presence.ConnForUser(identity.UserID)
		if !ok {
			return OperatorResult{}, nil, notFoundf("user %s is not online", username)
		}
		r.terminate(connID, models.Event{Name: models.EventSystemMessage, Data: models.Notice{Message: "Your session was terminated by the administrator"}})
		r.appendSystem(fmt.Sprintf("🔌 Session of %s was terminated by the administrator", username))
		r.pushPresence()
		return OperatorResult{Message: fmt.Sprintf("Session of %s terminated", username)}, &target, nil
	}
	return OperatorResult{}, nil, validationf("unknown command %q", cmd.Name())
}

// Stats is a point-in-time view of the router's stores.
type Stats struct {
	Identities   int `json:"identities"`
	Sessions     int `json:"sessions"`
	PrivateChats int `json:"private_chats"`
	Groups       int `json:"groups"`
	Messages     int `json:"messages"`
}

func (r *Router) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Identities:   r.identities.Count(),
		Sessions:     r.presence.Count(),
		PrivateChats: r.chats.CountPrivate(),
		Groups:       r.chats.CountGroups(),
		Messages:     r.messages.Count(),
	}
}

// Channels returns the fixed public channels.
func Channels() []models.Channel {
	return append([]models.Channel(nil), models.DefaultChannels...)
}
