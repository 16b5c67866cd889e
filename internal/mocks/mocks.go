package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"messenger/internal/chat"
)

type OperatorMock struct {
	mock.Mock
}

func (m *OperatorMock) Operate(ctx context.Context, requestID string, cmd chat.OperatorCommand) (chat.OperatorResult, error) {
	args := m.Called(ctx, requestID, cmd)
	var result chat.OperatorResult
	if val := args.Get(0); val != nil {
		result = val.(chat.OperatorResult)
	}
	return result, args.Error(1)
}

type AuditorMock struct {
	mock.Mock
}

func (m *AuditorMock) Emit(ctx context.Context, level, text, requestID string, userID *string) {
	m.Called(ctx, level, text, requestID, userID)
}

type StatsSourceMock struct {
	mock.Mock
}

func (m *StatsSourceMock) Stats() chat.Stats {
	args := m.Called()
	return args.Get(0).(chat.Stats)
}

type HasherMock struct {
	mock.Mock
}

func (m *HasherMock) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *HasherMock) Compare(hash, password string) bool {
	args := m.Called(hash, password)
	return args.Bool(0)
}
