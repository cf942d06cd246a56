package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"docextract/internal/domain"
	"docextract/internal/service"
)

// ChatHandler handles conversation and document upload endpoints.
type ChatHandler struct {
	svc            service.ChatService
	maxUploadBytes int64
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(svc service.ChatService, maxUploadBytes int64) *ChatHandler {
	return &ChatHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// Create handles POST /api/v1/conversations
// @Summary Create a conversation
// @Description Create a conversation seeded with the assistant greeting
// @Tags conversations
// @Accept json
// @Produce json
// @Param body body object false "Optional title, e.g. {\"title\": \"Receipts\"}"
// @Success 201 {object} APIResponse{data=domain.Conversation} "Conversation created"
// @Failure 400 {object} APIResponse "Invalid body or title too long"
// @Failure 500 {object} APIResponse "Internal error"
// @Router /conversations [post]
func (h *ChatHandler) Create(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
			return
		}
	}

	conv, err := h.svc.CreateConversation(c.Request.Context(), req.Title)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, conv)
}

// Get handles GET /api/v1/conversations/:id
// @Summary Get a conversation
// @Tags conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} APIResponse{data=domain.Conversation}
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 404 {object} APIResponse "Conversation not found"
// @Router /conversations/{id} [get]
func (h *ChatHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	conv, err := h.svc.GetConversation(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, conv)
}

// ListMessages handles GET /api/v1/conversations/:id/messages
// @Summary List conversation messages
// @Description List the transcript in chronological order
// @Tags conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} APIResponse{data=[]domain.Message}
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 404 {object} APIResponse "Conversation not found"
// @Router /conversations/{id}/messages [get]
func (h *ChatHandler) ListMessages(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	msgs, err := h.svc.ListMessages(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, msgs)
}

// SendMessage handles POST /api/v1/conversations/:id/messages
// @Summary Send a chat message
// @Description Store a user message, forward it with recent history to the model and return the reply
// @Tags conversations
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param body body object true "Message text, e.g. {\"text\": \"What is the total?\"}"
// @Success 201 {object} APIResponse{data=domain.Message} "Assistant reply"
// @Failure 400 {object} APIResponse "Missing text"
// @Failure 404 {object} APIResponse "Conversation not found"
// @Failure 429 {object} APIResponse "Model rate limited"
// @Failure 502 {object} APIResponse "Model request failed"
// @Router /conversations/{id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "text is required")
		return
	}

	reply, err := h.svc.SendMessage(c.Request.Context(), id, req.Text)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, reply)
}

// Upload handles POST /api/v1/conversations/:id/uploads
// @Summary Upload a document
// @Description Upload an image or PDF (max 5MB by default) and extract its fields
// @Tags conversations
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Conversation ID"
// @Param file formData file true "Image or PDF to extract"
// @Param prompt formData string false "Extra extraction instructions"
// @Success 201 {object} APIResponse{data=service.UploadResult} "Upload and reply stored"
// @Failure 400 {object} APIResponse "Missing file, unsupported type or name too long"
// @Failure 404 {object} APIResponse "Conversation not found"
// @Failure 413 {object} APIResponse "File too large"
// @Failure 429 {object} APIResponse "Model rate limited"
// @Failure 502 {object} APIResponse "Model request failed"
// @Router /conversations/{id}/uploads [post]
func (h *ChatHandler) Upload(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	// One byte past the limit is enough for the service to reject the file.
	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FILE", "could not read uploaded file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	result, err := h.svc.UploadDocument(c.Request.Context(), service.UploadInput{
		ConversationID: id,
		FileName:       header.Filename,
		ContentType:    contentType,
		Data:           data,
		Prompt:         c.PostForm("prompt"),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, result)
}

// Render handles GET /api/v1/conversations/:id/messages/:messageId/render
// @Summary Render a message
// @Description Render a message as natural text, structured fields or table rows
// @Tags conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Param messageId path string true "Message ID"
// @Param format query string false "natural, json or table" default(natural)
// @Success 200 {object} APIResponse{data=service.Rendering}
// @Failure 400 {object} APIResponse "Invalid ID or format"
// @Failure 404 {object} APIResponse "Message not found"
// @Router /conversations/{id}/messages/{messageId}/render [get]
func (h *ChatHandler) Render(c *gin.Context) {
	convID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	msgID, ok := pathUUID(c, "messageId")
	if !ok {
		return
	}

	format := domain.ResponseFormat(c.DefaultQuery("format", string(domain.FormatNatural)))
	out, err := h.svc.RenderMessage(c.Request.Context(), convID, msgID, format)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, out)
}

// Export handles GET /api/v1/conversations/:id/messages/:messageId/export/:kind
// @Summary Export a message table
// @Description Download the table rendering of an assistant message as CSV or XLSX
// @Tags conversations
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Conversation ID"
// @Param messageId path string true "Message ID"
// @Param kind path string true "csv or xlsx"
// @Success 200 {file} file "Exported table"
// @Failure 400 {object} APIResponse "Invalid kind or not an assistant message"
// @Failure 404 {object} APIResponse "Message not found"
// @Router /conversations/{id}/messages/{messageId}/export/{kind} [get]
func (h *ChatHandler) Export(c *gin.Context) {
	convID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	msgID, ok := pathUUID(c, "messageId")
	if !ok {
		return
	}

	file, err := h.svc.ExportTable(c.Request.Context(), convID, msgID, domain.ExportKind(c.Param("kind")))
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Attachment handles GET /api/v1/conversations/:id/messages/:messageId/attachment
// @Summary Get an attachment URL
// @Description Return a presigned download URL for the document stored with a message
// @Tags conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Param messageId path string true "Message ID"
// @Success 200 {object} APIResponse{data=map[string]string}
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 404 {object} APIResponse "Message or attachment not found"
// @Router /conversations/{id}/messages/{messageId}/attachment [get]
func (h *ChatHandler) Attachment(c *gin.Context) {
	convID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	msgID, ok := pathUUID(c, "messageId")
	if !ok {
		return
	}

	url, err := h.svc.AttachmentURL(c.Request.Context(), convID, msgID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}
