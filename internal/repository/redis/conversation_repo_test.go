package redis

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docextract/internal/config"
	"docextract/internal/domain"
	"docextract/internal/port"
)

func setupRepo(t *testing.T) (port.ConversationRepository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := NewClient(&config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewConversationRepo(client, "test"), mr
}

func createConversation(t *testing.T, repo port.ConversationRepository) *domain.Conversation {
	t.Helper()
	conv := &domain.Conversation{ID: uuid.New(), Title: "Receipts"}
	require.NoError(t, repo.CreateConversation(context.Background(), conv))
	return conv
}

func TestConversationRepo_CreateAndGet(t *testing.T) {
	repo, mr := setupRepo(t)
	conv := createConversation(t, repo)

	assert.True(t, mr.Exists("test:conversation:"+conv.ID.String()))

	got, err := repo.GetConversation(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
	assert.Equal(t, "Receipts", got.Title)
	assert.True(t, conv.CreatedAt.Equal(got.CreatedAt))
}

func TestConversationRepo_GetConversation_NotFound(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.GetConversation(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestConversationRepo_AppendAndGetMessage(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	conv := createConversation(t, repo)

	msg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		Role:           domain.RoleUser,
		Content:        "Uploaded image: scan.png",
		AttachmentName: "scan.png",
		AttachmentType: "image/png",
		AttachmentKey:  "uploads/scan.png",
		AttachmentSize: 1024,
	}
	require.NoError(t, repo.AppendMessage(ctx, msg))

	got, err := repo.GetMessage(ctx, conv.ID, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, msg.Content, got.Content)
	assert.Equal(t, "uploads/scan.png", got.AttachmentKey)
	assert.Equal(t, int64(1024), got.AttachmentSize)
	assert.True(t, got.HasAttachment())

	updated, err := repo.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.Equal(msg.CreatedAt))
}

func TestConversationRepo_AppendMessage_UnknownConversation(t *testing.T) {
	repo, _ := setupRepo(t)

	err := repo.AppendMessage(context.Background(), &domain.Message{
		ID: uuid.New(), ConversationID: uuid.New(), Role: domain.RoleUser, Content: "hi",
	})
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestConversationRepo_GetMessage_NotFound(t *testing.T) {
	repo, _ := setupRepo(t)
	conv := createConversation(t, repo)

	_, err := repo.GetMessage(context.Background(), conv.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrMessageNotFound)
}

func TestConversationRepo_ListMessages(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	conv := createConversation(t, repo)

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.AppendMessage(ctx, &domain.Message{
			ID:             uuid.New(),
			ConversationID: conv.ID,
			Role:           domain.RoleUser,
			Content:        fmt.Sprintf("message %d", i),
		}))
	}

	all, err := repo.ListMessages(ctx, conv.ID, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "message 1", all[0].Content)
	assert.Equal(t, "message 5", all[4].Content)

	recent, err := repo.ListMessages(ctx, conv.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "message 4", recent[0].Content)
	assert.Equal(t, "message 5", recent[1].Content)

	more, err := repo.ListMessages(ctx, conv.ID, 50)
	require.NoError(t, err)
	assert.Len(t, more, 5)
}

func TestConversationRepo_AppendMessage_BumpsUpdatedAt(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	conv := createConversation(t, repo)

	var last *domain.Message
	for i := 0; i < 3; i++ {
		last = &domain.Message{ID: uuid.New(), ConversationID: conv.ID, Role: domain.RoleUser, Content: "hi"}
		require.NoError(t, repo.AppendMessage(ctx, last))
	}

	got, err := repo.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(last.CreatedAt))
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestConversationRepo_ListMessages_Empty(t *testing.T) {
	repo, _ := setupRepo(t)

	msgs, err := repo.ListMessages(context.Background(), uuid.New(), 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestConversationRepo_Ping(t *testing.T) {
	repo, mr := setupRepo(t)
	assert.NoError(t, repo.Ping(context.Background()))

	mr.Close()
	assert.Error(t, repo.Ping(context.Background()))
}

func TestNewConversationRepo_DefaultPrefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	repo := NewConversationRepo(client, "")
	conv := &domain.Conversation{ID: uuid.New()}
	require.NoError(t, repo.CreateConversation(context.Background(), conv))
	assert.True(t, mr.Exists("docextract:conversation:"+conv.ID.String()))
}
