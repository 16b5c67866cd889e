package ws

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"messenger/internal/chat"
)

var errUnknownEvent = errors.New("unknown event")

// frame is the envelope of every inbound and outbound message.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

var decoders = map[string]func(json.RawMessage) (chat.Command, error){
	"register":            decode[chat.Register],
	"login":               decode[chat.Login],
	"logout":              decode[chat.Logout],
	"join_channel":        decode[chat.JoinChannel],
	"send_message":        decode[chat.SendMessage],
	"create_private_chat": decode[chat.CreatePrivateChat],
	"get_private_chats":   decode[chat.GetPrivateChats],
	"leave_private_chat":  decode[chat.LeavePrivateChat],
	"delete_private_chat": decode[chat.DeletePrivateChat],
	"create_group":        decode[chat.CreateGroup],
	"get_groups":          decode[chat.GetGroups],
	"leave_group":         decode[chat.LeaveGroup],
	"delete_group":        decode[chat.DeleteGroup],
	"delete_message":      decode[chat.DeleteMessage],
	"edit_message":        decode[chat.EditMessage],
	"clear_history":       decode[chat.ClearHistory],
}

func decode[T chat.Command](data json.RawMessage) (chat.Command, error) {
	var cmd T
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return cmd, nil
	}
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", cmd.Name(), err)
	}
	return cmd, nil
}

// decodeFrame turns one text frame into a command.
func decodeFrame(payload []byte) (string, chat.Command, error) {
	var f frame
	if err := json.Unmarshal(payload, &f); err != nil {
		return "", nil, fmt.Errorf("malformed frame: %w", err)
	}
	dec, ok := decoders[f.Event]
	if !ok {
		return f.Event, nil, fmt.Errorf("%w %q", errUnknownEvent, f.Event)
	}
	cmd, err := dec(f.Data)
	return f.Event, cmd, err
}
