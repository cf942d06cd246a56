package domain

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrEmptyMessage         = errors.New("message text is empty")
	ErrNameTooLong          = errors.New("name exceeds maximum length")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile            = errors.New("file is empty")
	ErrInvalidFormat        = errors.New("invalid response format")
	ErrInvalidExportKind    = errors.New("invalid export kind")
	ErrUploadFailed         = errors.New("file upload to storage failed")
	ErrNoAttachment         = errors.New("message has no stored attachment")
	ErrNotAssistantMessage  = errors.New("only assistant messages can be exported")
	ErrModelUnavailable     = errors.New("language model request failed")
	ErrModelRateLimited     = errors.New("language model rate limited")
)
