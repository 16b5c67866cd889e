package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"messenger/internal/chat"
)

var (
	// ErrHelp asks the caller to print usage.
	ErrHelp = errors.New("help requested")
	// ErrExit asks the caller to stop reading commands.
	ErrExit = errors.New("exit requested")
	// ErrEmpty is returned for blank lines.
	ErrEmpty = errors.New("empty command")
)

// Usage lists the operator commands.
const Usage = `Available commands:
  /list                  show all registered users
  /online                show online users
  /ban <name>            ban a user
  /unban <name>          unban a user
  /kick <name>           kick a user
  /mute <name> <minutes> mute a user for N minutes
  /unmute <name>         unmute a user
  /prog kill <name>      terminate a user's session
  /broadcast <text>      send a message to everyone
  /help                  show this help
  /exit                  stop the console`

// Parse turns one console line into an operator command.
func Parse(line string) (chat.OperatorCommand, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, ErrEmpty
	}
	head, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch head {
	case "/help":
		return nil, ErrHelp
	case "/exit":
		return nil, ErrExit
	case "/list":
		return chat.ListIdentities{}, nil
	case "/online":
		return chat.ListSessions{}, nil
	case "/ban":
		if rest == "" {
			return nil, usage("/ban <name>")
		}
		return chat.Ban{Username: rest}, nil
	case "/unban":
		if rest == "" {
			return nil, usage("/unban <name>")
		}
		return chat.Unban{Username: rest}, nil
	case "/kick":
		if rest == "" {
			return nil, usage("/kick <name>")
		}
		return chat.Kick{Username: rest}, nil
	case "/unmute":
		if rest == "" {
			return nil, usage("/unmute <name>")
		}
		return chat.Unmute{Username: rest}, nil
	case "/mute":
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return nil, usage("/mute <name> <minutes>")
		}
		minutes, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("minutes must be a number")
		}
		return chat.Mute{Username: fields[0], Minutes: minutes}, nil
	case "/prog":
		sub, name, _ := strings.Cut(rest, " ")
		name = strings.TrimSpace(name)
		if sub != "kill" || name == "" {
			return nil, usage("/prog kill <name>")
		}
		return chat.ForceTerminate{Username: name}, nil
	case "/broadcast":
		if rest == "" {
			return nil, usage("/broadcast <text>")
		}
		return chat.Broadcast{Text: rest}, nil
	}
	return nil, fmt.Errorf("unknown command: %s (type /help for the list)", head)
}

func usage(form string) error {
	return fmt.Errorf("usage: %s", form)
}
