package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"room-chat-service/internal/models"
	"room-chat-service/internal/repositories"
)

type SessionRepositoryMock struct {
	mock.Mock
}

func (m *SessionRepositoryMock) OpenSession(ctx context.Context, socketID, ip string, connectedAt time.Time) error {
	args := m.Called(ctx, socketID, ip, connectedAt)
	return args.Error(0)
}

func (m *SessionRepositoryMock) BindUsername(ctx context.Context, socketID, username string) error {
	args := m.Called(ctx, socketID, username)
	return args.Error(0)
}

func (m *SessionRepositoryMock) SetRoom(ctx context.Context, socketID string, roomID *string) error {
	args := m.Called(ctx, socketID, roomID)
	return args.Error(0)
}

func (m *SessionRepositoryMock) CloseSession(ctx context.Context, socketID, reason string) error {
	args := m.Called(ctx, socketID, reason)
	return args.Error(0)
}

func (m *SessionRepositoryMock) RecentSessions(ctx context.Context, limit int) ([]models.Session, error) {
	args := m.Called(ctx, limit)
	var sessions []models.Session
	if val := args.Get(0); val != nil {
		sessions = val.([]models.Session)
	}
	return sessions, args.Error(1)
}

var _ repositories.SessionRepository = (*SessionRepositoryMock)(nil)
