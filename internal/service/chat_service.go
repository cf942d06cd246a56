package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docextract/internal/domain"
	"docextract/internal/export"
	"docextract/internal/extract"
	"docextract/internal/llm"
	"docextract/internal/metrics"
	"docextract/internal/port"
)

// Greeting opens every new conversation.
const Greeting = "Hello! I'm your document field extraction assistant. Upload an image or any document " +
	"whatsoever, and I'll extract all the fields and values for you."

const defaultHistoryWindow = 10

// UploadInput is the DTO for a document upload.
type UploadInput struct {
	ConversationID uuid.UUID
	FileName       string
	ContentType    string
	Data           []byte
	Prompt         string
}

// UploadResult holds the transcript entries an upload produced.
type UploadResult struct {
	UserMessage      *domain.Message `json:"user_message"`
	AssistantMessage *domain.Message `json:"assistant_message"`
}

// ExportFile is a rendered table ready for download.
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ChatSettings holds the limits a ChatService enforces.
type ChatSettings struct {
	// HistoryWindow is the number of prior messages forwarded with a new one.
	HistoryWindow  int
	MaxUploadBytes int64
	// MaxTokens overrides the reply limit of every provider. Zero leaves
	// each provider on its own configured limit.
	MaxTokens      int
}

// ChatService defines the conversation and extraction contract.
type ChatService interface {
	CreateConversation(ctx context.Context, title string) (*domain.Conversation, error)
	GetConversation(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	ListMessages(ctx context.Context, id uuid.UUID) ([]domain.Message, error)
	SendMessage(ctx context.Context, id uuid.UUID, text string) (*domain.Message, error)
	UploadDocument(ctx context.Context, input UploadInput) (*UploadResult, error)
	RenderMessage(ctx context.Context, convID, msgID uuid.UUID, format domain.ResponseFormat) (*Rendering, error)
	ExportTable(ctx context.Context, convID, msgID uuid.UUID, kind domain.ExportKind) (*ExportFile, error)
	AttachmentURL(ctx context.Context, convID, msgID uuid.UUID) (string, error)
}

type chatService struct {
	repo     port.ConversationRepository
	model    port.ChatClient
	storage  port.ObjectStorage
	settings ChatSettings
	log      *zap.Logger
	pdfText  func([]byte) (string, error)
}

// Option customizes a ChatService.
type Option func(*chatService)

// WithPDFText replaces the PDF text extractor.
func WithPDFText(fn func([]byte) (string, error)) Option {
	return func(s *chatService) { s.pdfText = fn }
}

// NewChatService creates a new ChatService. storage may be nil, in which
// case uploads are forwarded to the model but not kept.
func NewChatService(
	repo port.ConversationRepository,
	model port.ChatClient,
	storage port.ObjectStorage,
	settings ChatSettings,
	log *zap.Logger,
	opts ...Option,
) ChatService {
	if settings.HistoryWindow <= 0 {
		settings.HistoryWindow = defaultHistoryWindow
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &chatService{
		repo:     repo,
		model:    model,
		storage:  storage,
		settings: settings,
		log:      log,
		pdfText:  extract.PDFText,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *chatService) CreateConversation(ctx context.Context, title string) (*domain.Conversation, error) {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	conv := &domain.Conversation{ID: uuid.New(), Title: title}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}

	greeting := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		Role:           domain.RoleAssistant,
		Content:        Greeting,
	}
	if err := s.repo.AppendMessage(ctx, greeting); err != nil {
		return nil, fmt.Errorf("adding greeting: %w", err)
	}

	s.log.Info("chatService.CreateConversation: created", zap.String("conversation_id", conv.ID.String()))
	return conv, nil
}

func (s *chatService) GetConversation(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	return s.repo.GetConversation(ctx, id)
}

func (s *chatService) ListMessages(ctx context.Context, id uuid.UUID) ([]domain.Message, error) {
	if _, err := s.repo.GetConversation(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, id, 0)
}

func (s *chatService) SendMessage(ctx context.Context, id uuid.UUID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}

	userMsg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: id,
		Role:           domain.RoleUser,
		Content:        text,
	}
	if err := s.repo.AppendMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	// the window of prior messages plus the one just stored
	history, err := s.repo.ListMessages(ctx, id, s.settings.HistoryWindow+1)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	turns := make([]port.ChatMessage, 0, len(history))
	for i := range history {
		turns = append(turns, port.ChatMessage{Role: string(history[i].Role), Text: history[i].Content})
	}

	return s.complete(ctx, id, turns)
}

func (s *chatService) UploadDocument(ctx context.Context, input UploadInput) (*UploadResult, error) {
	kind, ok := domain.ClassifyContentType(input.ContentType)
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if len(input.Data) == 0 {
		return nil, domain.ErrEmptyFile
	}
	if utf8.RuneCountInString(input.FileName) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	if s.settings.MaxUploadBytes > 0 && int64(len(input.Data)) > s.settings.MaxUploadBytes {
		return nil, domain.ErrFileTooLarge
	}

	if _, err := s.repo.GetConversation(ctx, input.ConversationID); err != nil {
		return nil, err
	}

	label := "image"
	if kind == domain.AttachmentPDF {
		label = "PDF"
	}
	userMsg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: input.ConversationID,
		Role:           domain.RoleUser,
		Content:        fmt.Sprintf("Uploaded %s: %s", label, input.FileName),
		AttachmentName: input.FileName,
		AttachmentType: input.ContentType,
		AttachmentSize: int64(len(input.Data)),
	}

	s.log.Info("chatService.UploadDocument: received upload",
		zap.String("conversation_id", input.ConversationID.String()),
		zap.String("file_name", input.FileName),
		zap.String("content_type", input.ContentType),
		zap.Int("bytes", len(input.Data)))

	if s.storage != nil {
		key := fmt.Sprintf("conversations/%s/%s/%s",
			input.ConversationID, userMsg.ID, storageName(input.FileName, kind))
		_, err := s.storage.Upload(ctx, port.UploadInput{
			Key:         key,
			Body:        bytes.NewReader(input.Data),
			ContentType: input.ContentType,
			Size:        int64(len(input.Data)),
		})
		if err != nil {
			s.log.Error("chatService.UploadDocument: storage upload failed", zap.String("key", key), zap.Error(err))
			return nil, domain.ErrUploadFailed
		}
		userMsg.AttachmentKey = key
	}

	if err := s.repo.AppendMessage(ctx, userMsg); err != nil {
		s.discardUpload(userMsg.AttachmentKey)
		return nil, err
	}
	metrics.Uploads.WithLabelValues(string(kind)).Inc()

	turn := s.documentTurn(input, kind)
	assistant, err := s.complete(ctx, input.ConversationID, []port.ChatMessage{turn})
	if err != nil {
		return nil, err
	}
	return &UploadResult{UserMessage: userMsg, AssistantMessage: assistant}, nil
}

// discardUpload removes an object no message refers to. It runs detached
// from the request context so a cancelled request still cleans up.
func (s *chatService) discardUpload(key string) {
	if key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.storage.Delete(ctx, key); err != nil {
		s.log.Error("chatService.UploadDocument: failed to delete orphaned upload",
			zap.String("key", key), zap.Error(err))
	}
}

// documentTurn builds the single model turn for an upload. Images go as a
// data URL; PDFs go as extracted text when they have a text layer.
func (s *chatService) documentTurn(input UploadInput, kind domain.AttachmentKind) port.ChatMessage {
	instruction := llm.BuildExtractionPrompt(input.Prompt)
	if kind == domain.AttachmentPDF {
		text, err := s.pdfText(input.Data)
		if err == nil {
			return port.ChatMessage{
				Role: string(domain.RoleUser),
				Text: llm.BuildDocumentTextPrompt(instruction, text),
			}
		}
		s.log.Debug("chatService.UploadDocument: no PDF text, sending file as data URL",
			zap.String("file_name", input.FileName), zap.Error(err))
	}
	return port.ChatMessage{
		Role:     string(domain.RoleUser),
		Text:     instruction,
		ImageURL: dataURL(input.ContentType, input.Data),
	}
}

// complete sends turns to the model and stores the reply. A failed call
// leaves the transcript as it was.
func (s *chatService) complete(ctx context.Context, convID uuid.UUID, turns []port.ChatMessage) (*domain.Message, error) {
	resp, err := s.model.Complete(ctx, port.CompletionRequest{Messages: turns, MaxTokens: s.settings.MaxTokens})
	if err != nil {
		s.log.Warn("chatService: model request failed",
			zap.String("conversation_id", convID.String()), zap.Error(err))
		return nil, modelError(err)
	}

	reply := &domain.Message{
		ID:             uuid.New(),
		ConversationID: convID,
		Role:           domain.RoleAssistant,
		Content:        resp.Content,
	}
	if err := s.repo.AppendMessage(ctx, reply); err != nil {
		return nil, fmt.Errorf("storing reply: %w", err)
	}

	s.log.Debug("chatService: stored reply",
		zap.String("conversation_id", convID.String()),
		zap.String("provider", resp.Provider),
		zap.String("model", resp.Model),
		zap.Int("chars", len(resp.Content)))
	return reply, nil
}

func (s *chatService) RenderMessage(ctx context.Context, convID, msgID uuid.UUID, format domain.ResponseFormat) (*Rendering, error) {
	if !domain.AllowedResponseFormats[format] {
		return nil, domain.ErrInvalidFormat
	}
	msg, err := s.repo.GetMessage(ctx, convID, msgID)
	if err != nil {
		return nil, err
	}
	return Render(msg, format)
}

func (s *chatService) ExportTable(ctx context.Context, convID, msgID uuid.UUID, kind domain.ExportKind) (*ExportFile, error) {
	contentType, ok := domain.AllowedExportKinds[kind]
	if !ok {
		return nil, domain.ErrInvalidExportKind
	}
	msg, err := s.repo.GetMessage(ctx, convID, msgID)
	if err != nil {
		return nil, err
	}
	if msg.Role != domain.RoleAssistant {
		return nil, domain.ErrNotAssistantMessage
	}

	rendering, err := Render(msg, domain.FormatTable)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch kind {
	case domain.ExportXLSX:
		err = export.WriteXLSX(&buf, rendering.Rows)
	default:
		err = export.WriteCSV(&buf, rendering.Rows)
	}
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", kind, err)
	}

	return &ExportFile{
		FileName:    export.BuildFilename("extraction_"+msgID.String()[:8], string(kind)),
		ContentType: contentType,
		Data:        buf.Bytes(),
	}, nil
}

func (s *chatService) AttachmentURL(ctx context.Context, convID, msgID uuid.UUID) (string, error) {
	msg, err := s.repo.GetMessage(ctx, convID, msgID)
	if err != nil {
		return "", err
	}
	if s.storage == nil || !msg.HasAttachment() {
		return "", domain.ErrNoAttachment
	}
	return s.storage.PresignGet(ctx, msg.AttachmentKey, 0)
}

func modelError(err error) error {
	var rlErr *llm.RateLimitError
	if errors.As(err, &rlErr) {
		return fmt.Errorf("%w: %w", domain.ErrModelRateLimited, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
}

func dataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// storageName keeps object keys printable while preserving the extension.
func storageName(fileName string, kind domain.AttachmentKind) string {
	ext := ""
	if i := strings.LastIndexByte(fileName, '.'); i > 0 {
		ext = strings.ToLower(fileName[i+1:])
		fileName = fileName[:i]
	}
	name := export.SanitizeFilename(fileName)
	if name == "" {
		name = string(kind)
	}
	if ext = export.SanitizeFilename(ext); ext != "" {
		name += "." + ext
	}
	return name
}
