package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"messenger/internal/chat"
)

// Operator executes moderation commands.
type Operator interface {
	Operate(ctx context.Context, requestID string, cmd chat.OperatorCommand) (chat.OperatorResult, error)
}

// Console reads operator commands line by line.
type Console struct {
	operator Operator
	in       io.Reader
	out      io.Writer
	now      func() time.Time
}

// New builds a Console over in and out.
func New(operator Operator, in io.Reader, out io.Writer) *Console {
	return &Console{operator: operator, in: in, out: out, now: time.Now}
}

// Run reads until EOF, /exit or ctx is done and reports whether /exit was
// entered. A failing command is reported and the loop keeps going.
func (c *Console) Run(ctx context.Context) bool {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(c.out, header("Admin console"))
	fmt.Fprintln(c.out, Usage)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return false
		case line, ok := <-lines:
			if !ok {
				log.Printf("console input closed")
				return false
			}
			if !c.Exec(ctx, line) {
				return true
			}
		}
	}
}

// Exec runs one line and reports whether the loop should continue.
func (c *Console) Exec(ctx context.Context, line string) (keepGoing bool) {
	defer func() {
		if rec := recover(); rec != nil {
			fmt.Fprintln(c.out, errorText(fmt.Sprintf("error: %v", rec)))
			keepGoing = true
		}
	}()

	cmd, err := Parse(line)
	switch {
	case errors.Is(err, ErrEmpty):
		return true
	case errors.Is(err, ErrExit):
		return false
	case errors.Is(err, ErrHelp):
		fmt.Fprintln(c.out, Usage)
		return true
	case err != nil:
		fmt.Fprintln(c.out, errorText(err.Error()))
		return true
	}

	result, err := c.operator.Operate(ctx, uuid.NewString(), cmd)
	if err != nil {
		fmt.Fprintln(c.out, errorText(err.Error()))
		return true
	}
	c.render(cmd, result)
	return true
}

func (c *Console) render(cmd chat.OperatorCommand, result chat.OperatorResult) {
	switch cmd.(type) {
	case chat.ListIdentities:
		fmt.Fprintln(c.out, header("Registered users"))
		table := newTable(c.out, []string{"Username", "ID", "Status", "Mute", "Role"})
		for _, identity := range result.Identities {
			status := "OK"
			if identity.Banned {
				status = "BANNED"
			}
			mute := "-"
			if identity.IsMuted(c.now()) {
				mute = "until " + identity.MutedUntil.Format(time.DateTime)
			}
			role := "USER"
			if identity.Admin {
				role = "ADMIN"
			}
			table.Append([]string{identity.Username, identity.UserID, status, mute, role})
		}
		table.Render()
	case chat.ListSessions:
		fmt.Fprintln(c.out, header("Online users"))
		table := newTable(c.out, []string{"Username", "ID", "Session", "Since"})
		for _, s := range result.Sessions {
			table.Append([]string{s.Username, s.UserID, shortID(s.ConnID), s.JoinedAt.Format(time.TimeOnly)})
		}
		table.Render()
	default:
		fmt.Fprintln(c.out, result.Message)
	}
}

func newTable(out io.Writer, columns []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(columns)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}

func header(text string) string {
	return color.New(color.BgBlack, color.FgGreen).Render(" " + strings.ToUpper(text) + " ")
}

func errorText(text string) string {
	return color.FgRed.Render(text)
}
