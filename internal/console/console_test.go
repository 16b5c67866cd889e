package console

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger/internal/chat"
	"messenger/internal/mocks"
	"messenger/internal/models"
)

func TestConsoleRunsCommandsUntilExit(t *testing.T) {
	operator := new(mocks.OperatorMock)
	operator.On("Operate", mock.Anything, mock.AnythingOfType("string"), chat.Ban{Username: "alice"}).
		Return(chat.OperatorResult{Message: "User alice banned"}, nil).Once()
	operator.On("Operate", mock.Anything, mock.AnythingOfType("string"), chat.Kick{Username: "ghost"}).
		Return(chat.OperatorResult{}, assertErr("user ghost is not online")).Once()

	in := strings.NewReader("/ban alice\n/kick ghost\n/bogus\n/exit\n/ban bob\n")
	var out bytes.Buffer

	exited := New(operator, in, &out).Run(context.Background())

	assert.True(t, exited)
	assert.Contains(t, out.String(), "User alice banned")
	assert.Contains(t, out.String(), "user ghost is not online")
	assert.Contains(t, out.String(), "unknown command: /bogus")
	operator.AssertExpectations(t)
}

func TestConsoleStopsAtEOF(t *testing.T) {
	operator := new(mocks.OperatorMock)
	var out bytes.Buffer

	exited := New(operator, strings.NewReader("\n\n"), &out).Run(context.Background())

	assert.False(t, exited)
	operator.AssertNotCalled(t, "Operate", mock.Anything, mock.Anything, mock.Anything)
}

func TestConsoleRendersTables(t *testing.T) {
	operator := new(mocks.OperatorMock)
	until := time.Now().Add(time.Hour)
	operator.On("Operate", mock.Anything, mock.Anything, chat.ListIdentities{}).Return(chat.OperatorResult{
		Identities: []models.Identity{
			{Username: "admin", UserID: "000001", Admin: true},
			{Username: "alice", UserID: "123456", Banned: true, MutedUntil: &until},
		},
	}, nil).Once()
	operator.On("Operate", mock.Anything, mock.Anything, chat.ListSessions{}).Return(chat.OperatorResult{
		Sessions: []models.Session{{ConnID: "0123456789abcdef", Username: "admin", UserID: "000001", JoinedAt: time.Now()}},
	}, nil).Once()

	var out bytes.Buffer
	c := New(operator, strings.NewReader(""), &out)
	require.True(t, c.Exec(context.Background(), "/list"))
	require.True(t, c.Exec(context.Background(), "/online"))

	text := out.String()
	assert.Contains(t, text, "123456")
	assert.Contains(t, text, "BANNED")
	assert.Contains(t, text, "ADMIN")
	assert.Contains(t, text, "01234567...")
	operator.AssertExpectations(t)
}

func TestConsoleRecoversFromPanics(t *testing.T) {
	operator := new(mocks.OperatorMock)
	operator.On("Operate", mock.Anything, mock.Anything, chat.Unban{Username: "alice"}).
		Run(func(mock.Arguments) { panic("boom") }).
		Return(chat.OperatorResult{}, nil).Once()

	var out bytes.Buffer
	keepGoing := New(operator, strings.NewReader(""), &out).Exec(context.Background(), "/unban alice")

	assert.True(t, keepGoing)
	assert.Contains(t, out.String(), "boom")
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
