package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"docextract/internal/domain"
	"docextract/internal/service"
)

// MockChatService is a mock implementation of service.ChatService.
type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) CreateConversation(ctx context.Context, title string) (*domain.Conversation, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockChatService) GetConversation(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockChatService) ListMessages(ctx context.Context, id uuid.UUID) ([]domain.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockChatService) SendMessage(ctx context.Context, id uuid.UUID, text string) (*domain.Message, error) {
	args := m.Called(ctx, id, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockChatService) UploadDocument(ctx context.Context, input service.UploadInput) (*service.UploadResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadResult), args.Error(1)
}

func (m *MockChatService) RenderMessage(ctx context.Context, convID, msgID uuid.UUID, format domain.ResponseFormat) (*service.Rendering, error) {
	args := m.Called(ctx, convID, msgID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Rendering), args.Error(1)
}

func (m *MockChatService) ExportTable(ctx context.Context, convID, msgID uuid.UUID, kind domain.ExportKind) (*service.ExportFile, error) {
	args := m.Called(ctx, convID, msgID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportFile), args.Error(1)
}

func (m *MockChatService) AttachmentURL(ctx context.Context, convID, msgID uuid.UUID) (string, error) {
	args := m.Called(ctx, convID, msgID)
	return args.String(0), args.Error(1)
}
