package port

import (
	"context"

	"github.com/google/uuid"

	"docextract/internal/domain"
)

// ConversationRepository persists conversations and their transcripts.
type ConversationRepository interface {
	CreateConversation(ctx context.Context, conv *domain.Conversation) error
	GetConversation(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	AppendMessage(ctx context.Context, msg *domain.Message) error
	GetMessage(ctx context.Context, conversationID, messageID uuid.UUID) (*domain.Message, error)
	// ListMessages returns messages oldest first. A positive limit keeps only
	// the most recent limit messages.
	ListMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]domain.Message, error)
	Ping(ctx context.Context) error
}
