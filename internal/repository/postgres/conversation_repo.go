package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"docextract/internal/domain"
	"docextract/internal/port"
)

const messageColumns = `id, conversation_id, role, content, attachment_name, attachment_type,
	attachment_key, attachment_size, created_at`

type conversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo creates a new PostgreSQL-backed ConversationRepository.
func NewConversationRepo(db *sqlx.DB) port.ConversationRepository {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	now := time.Now().UTC()
	conv.CreatedAt = now
	conv.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO conversations (id, title, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		conv.ID, conv.Title, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("conversationRepo.CreateConversation: %w", err)
	}
	return nil
}

func (r *conversationRepo) GetConversation(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.GetContext(ctx, &conv,
		"SELECT id, title, created_at, updated_at FROM conversations WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("conversationRepo.GetConversation: %w", err)
	}
	return &conv, nil
}

// AppendMessage inserts the message and bumps the conversation's updated_at
// in one transaction.
func (r *conversationRepo) AppendMessage(ctx context.Context, msg *domain.Message) error {
	msg.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("conversationRepo.AppendMessage begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = $1 WHERE id = $2`, msg.CreatedAt, msg.ConversationID)
	if err != nil {
		return fmt.Errorf("conversationRepo.AppendMessage touch: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrConversationNotFound
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, attachment_name, attachment_type,
			attachment_key, attachment_size, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.AttachmentName, msg.AttachmentType,
		msg.AttachmentKey, msg.AttachmentSize, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("conversationRepo.AppendMessage insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("conversationRepo.AppendMessage commit: %w", err)
	}
	return nil
}

func (r *conversationRepo) GetMessage(ctx context.Context, conversationID, messageID uuid.UUID) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.GetContext(ctx, &msg,
		"SELECT "+messageColumns+" FROM messages WHERE id = $1 AND conversation_id = $2",
		messageID, conversationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("conversationRepo.GetMessage: %w", err)
	}
	return &msg, nil
}

func (r *conversationRepo) ListMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]domain.Message, error) {
	var (
		messages []domain.Message
		err      error
	)
	if limit > 0 {
		err = r.db.SelectContext(ctx, &messages,
			`SELECT `+messageColumns+` FROM (
				SELECT * FROM messages WHERE conversation_id = $1 ORDER BY seq DESC LIMIT $2
			 ) recent ORDER BY seq ASC`,
			conversationID, limit)
	} else {
		err = r.db.SelectContext(ctx, &messages,
			"SELECT "+messageColumns+" FROM messages WHERE conversation_id = $1 ORDER BY seq ASC",
			conversationID)
	}
	if err != nil {
		return nil, fmt.Errorf("conversationRepo.ListMessages: %w", err)
	}
	return messages, nil
}

func (r *conversationRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
