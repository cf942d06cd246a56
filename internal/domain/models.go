package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxNameLength bounds conversation titles and attachment file names, in
// characters.
const MaxNameLength = 255

// Conversation is one extraction chat session.
type Conversation struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Message is one entry of a conversation transcript. Assistant messages
// hold the raw model reply; renderings are derived on demand.
type Message struct {
	ID             uuid.UUID   `db:"id" json:"id"`
	ConversationID uuid.UUID   `db:"conversation_id" json:"conversation_id"`
	Role           MessageRole `db:"role" json:"role"`
	Content        string      `db:"content" json:"content"`
	AttachmentName string      `db:"attachment_name" json:"attachment_name,omitempty"`
	AttachmentType string      `db:"attachment_type" json:"attachment_type,omitempty"`
	AttachmentKey  string      `db:"attachment_key" json:"-"`
	AttachmentSize int64       `db:"attachment_size" json:"attachment_size,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
}

// HasAttachment reports whether the message references a stored upload.
func (m *Message) HasAttachment() bool {
	return m.AttachmentKey != ""
}
