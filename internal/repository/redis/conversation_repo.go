// Package redis implements the conversation store on Redis.
//
// Layout per conversation, under the configured key prefix:
//
//	<prefix>:conversation:<id>           JSON conversation
//	<prefix>:conversation:<id>:order     list of message ids, oldest first
//	<prefix>:conversation:<id>:messages  hash of message id to JSON message
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"docextract/internal/config"
	"docextract/internal/domain"
	"docextract/internal/port"
)

// NewClient creates a Redis client from config.
func NewClient(cfg *config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// messageRecord is the stored form of a message; unlike domain.Message it
// keeps the attachment key.
type messageRecord struct {
	ID             uuid.UUID          `json:"id"`
	ConversationID uuid.UUID          `json:"conversation_id"`
	Role           domain.MessageRole `json:"role"`
	Content        string             `json:"content"`
	AttachmentName string             `json:"attachment_name,omitempty"`
	AttachmentType string             `json:"attachment_type,omitempty"`
	AttachmentKey  string             `json:"attachment_key,omitempty"`
	AttachmentSize int64              `json:"attachment_size,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

func toRecord(m *domain.Message) messageRecord {
	return messageRecord{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           m.Role,
		Content:        m.Content,
		AttachmentName: m.AttachmentName,
		AttachmentType: m.AttachmentType,
		AttachmentKey:  m.AttachmentKey,
		AttachmentSize: m.AttachmentSize,
		CreatedAt:      m.CreatedAt,
	}
}

func (r messageRecord) message() domain.Message {
	return domain.Message{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		Role:           r.Role,
		Content:        r.Content,
		AttachmentName: r.AttachmentName,
		AttachmentType: r.AttachmentType,
		AttachmentKey:  r.AttachmentKey,
		AttachmentSize: r.AttachmentSize,
		CreatedAt:      r.CreatedAt,
	}
}

type conversationRepo struct {
	client goredis.UniversalClient
	prefix string
}

// NewConversationRepo creates a new Redis-backed ConversationRepository.
func NewConversationRepo(client goredis.UniversalClient, keyPrefix string) port.ConversationRepository {
	if keyPrefix == "" {
		keyPrefix = "docextract"
	}
	return &conversationRepo{client: client, prefix: keyPrefix}
}

func (r *conversationRepo) conversationKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:conversation:%s", r.prefix, id)
}

func (r *conversationRepo) orderKey(id uuid.UUID) string {
	return r.conversationKey(id) + ":order"
}

func (r *conversationRepo) messagesKey(id uuid.UUID) string {
	return r.conversationKey(id) + ":messages"
}

func (r *conversationRepo) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	now := time.Now().UTC()
	conv.CreatedAt = now
	conv.UpdatedAt = now

	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("conversationRepo.CreateConversation marshal: %w", err)
	}
	if err := r.client.Set(ctx, r.conversationKey(conv.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("conversationRepo.CreateConversation: %w", err)
	}
	return nil
}

func (r *conversationRepo) GetConversation(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	data, err := r.client.Get(ctx, r.conversationKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("conversationRepo.GetConversation: %w", err)
	}
	var conv domain.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("conversationRepo.GetConversation unmarshal: %w", err)
	}
	return &conv, nil
}

// maxAppendAttempts bounds the optimistic retries of AppendMessage when a
// concurrent append touches the same conversation.
const maxAppendAttempts = 5

// AppendMessage stores msg and bumps the conversation's updated_at inside a
// WATCH transaction, so concurrent appends never move updated_at backwards.
func (r *conversationRepo) AppendMessage(ctx context.Context, msg *domain.Message) error {
	convKey := r.conversationKey(msg.ConversationID)

	txf := func(tx *goredis.Tx) error {
		data, err := tx.Get(ctx, convKey).Bytes()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				return domain.ErrConversationNotFound
			}
			return err
		}
		var conv domain.Conversation
		if err := json.Unmarshal(data, &conv); err != nil {
			return fmt.Errorf("unmarshal conversation: %w", err)
		}

		msg.CreatedAt = time.Now().UTC()
		if msg.CreatedAt.After(conv.UpdatedAt) {
			conv.UpdatedAt = msg.CreatedAt
		}

		msgData, err := json.Marshal(toRecord(msg))
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		convData, err := json.Marshal(conv)
		if err != nil {
			return fmt.Errorf("marshal conversation: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.HSet(ctx, r.messagesKey(msg.ConversationID), msg.ID.String(), msgData)
			pipe.RPush(ctx, r.orderKey(msg.ConversationID), msg.ID.String())
			pipe.Set(ctx, convKey, convData, 0)
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < maxAppendAttempts; attempt++ {
		err = r.client.Watch(ctx, txf, convKey)
		if !errors.Is(err, goredis.TxFailedErr) {
			break
		}
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrConversationNotFound):
		return err
	default:
		return fmt.Errorf("conversationRepo.AppendMessage: %w", err)
	}
}

func (r *conversationRepo) GetMessage(ctx context.Context, conversationID, messageID uuid.UUID) (*domain.Message, error) {
	data, err := r.client.HGet(ctx, r.messagesKey(conversationID), messageID.String()).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("conversationRepo.GetMessage: %w", err)
	}
	var rec messageRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("conversationRepo.GetMessage unmarshal: %w", err)
	}
	msg := rec.message()
	return &msg, nil
}

func (r *conversationRepo) ListMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]domain.Message, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	ids, err := r.client.LRange(ctx, r.orderKey(conversationID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("conversationRepo.ListMessages order: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Message{}, nil
	}

	values, err := r.client.HMGet(ctx, r.messagesKey(conversationID), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("conversationRepo.ListMessages: %w", err)
	}

	messages := make([]domain.Message, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("conversationRepo.ListMessages: message %s missing from hash", ids[i])
		}
		var rec messageRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("conversationRepo.ListMessages unmarshal: %w", err)
		}
		messages = append(messages, rec.message())
	}
	return messages, nil
}

func (r *conversationRepo) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
