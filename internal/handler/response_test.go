package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"docextract/internal/domain"
	"docextract/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrConversationNotFound, http.StatusNotFound, "CONVERSATION_NOT_FOUND"},
		{domain.ErrMessageNotFound, http.StatusNotFound, "MESSAGE_NOT_FOUND"},
		{domain.ErrEmptyMessage, http.StatusBadRequest, "EMPTY_MESSAGE"},
		{domain.ErrNameTooLong, http.StatusBadRequest, "NAME_TOO_LONG"},
		{domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{domain.ErrEmptyFile, http.StatusBadRequest, "EMPTY_FILE"},
		{domain.ErrInvalidFormat, http.StatusBadRequest, "INVALID_FORMAT"},
		{domain.ErrInvalidExportKind, http.StatusBadRequest, "INVALID_EXPORT_KIND"},
		{domain.ErrNoAttachment, http.StatusNotFound, "NO_ATTACHMENT"},
		{domain.ErrUploadFailed, http.StatusInternalServerError, "UPLOAD_FAILED"},
		{domain.ErrModelRateLimited, http.StatusTooManyRequests, "MODEL_RATE_LIMITED"},
		{domain.ErrModelUnavailable, http.StatusBadGateway, "MODEL_UNAVAILABLE"},
		{fmt.Errorf("conversationRepo.GetMessage: %w", domain.ErrMessageNotFound), http.StatusNotFound, "MESSAGE_NOT_FOUND"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
			assert.NotEmpty(t, msg)
		})
	}
}
