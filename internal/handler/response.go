// Package handler holds the gin HTTP handlers.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"docextract/internal/domain"
	"docextract/internal/llm"
	"docextract/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrConversationNotFound):
		return http.StatusNotFound, "CONVERSATION_NOT_FOUND", "conversation not found"
	case errors.Is(err, domain.ErrMessageNotFound):
		return http.StatusNotFound, "MESSAGE_NOT_FOUND", "message not found"
	case errors.Is(err, domain.ErrEmptyMessage):
		return http.StatusBadRequest, "EMPTY_MESSAGE", "message text is required"
	case errors.Is(err, domain.ErrNameTooLong):
		return http.StatusBadRequest, "NAME_TOO_LONG", "title or file name exceeds 255 characters"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "please upload an image or PDF file"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrEmptyFile):
		return http.StatusBadRequest, "EMPTY_FILE", "uploaded file is empty"
	case errors.Is(err, domain.ErrInvalidFormat):
		return http.StatusBadRequest, "INVALID_FORMAT", "invalid format; allowed: natural, json, table"
	case errors.Is(err, domain.ErrInvalidExportKind):
		return http.StatusBadRequest, "INVALID_EXPORT_KIND", "invalid export kind; allowed: csv, xlsx"
	case errors.Is(err, domain.ErrNotAssistantMessage):
		return http.StatusBadRequest, "NOT_ASSISTANT_MESSAGE", "only assistant messages can be exported"
	case errors.Is(err, domain.ErrNoAttachment):
		return http.StatusNotFound, "NO_ATTACHMENT", "message has no stored attachment"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrModelRateLimited):
		return http.StatusTooManyRequests, "MODEL_RATE_LIMITED", "the language model is rate limited; try again later"
	case errors.Is(err, domain.ErrModelUnavailable):
		return http.StatusBadGateway, "MODEL_UNAVAILABLE", "the language model request failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)

	var rlErr *llm.RateLimitError
	if errors.As(err, &rlErr) {
		c.Header("Retry-After", strconv.Itoa(int(rlErr.RetryAfter.Seconds())))
	}
	if status >= 500 {
		zap.L().Error("internal error",
			zap.String("request_id", middleware.GetRequestID(c)), zap.Error(err))
	}
	RespondError(c, status, code, msg)
}

// pathUUID parses a UUID route parameter, responding 400 when it is malformed.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
