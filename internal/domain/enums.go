package domain

import "strings"

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// ResponseFormat selects how an assistant message is rendered.
type ResponseFormat string

const (
	FormatNatural ResponseFormat = "natural"
	FormatJSON    ResponseFormat = "json"
	FormatTable   ResponseFormat = "table"
)

// AllowedResponseFormats lists the accepted render formats.
var AllowedResponseFormats = map[ResponseFormat]bool{
	FormatNatural: true,
	FormatJSON:    true,
	FormatTable:   true,
}

// ExportKind selects the file format of a table export.
type ExportKind string

const (
	ExportCSV  ExportKind = "csv"
	ExportXLSX ExportKind = "xlsx"
)

// AllowedExportKinds maps export kinds to their MIME content type.
var AllowedExportKinds = map[ExportKind]string{
	ExportCSV:  "text/csv; charset=utf-8",
	ExportXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// AttachmentKind classifies an uploaded document.
type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentPDF   AttachmentKind = "pdf"
)

// ContentTypePDF is the only non-image upload type accepted.
const ContentTypePDF = "application/pdf"

// ClassifyContentType maps a MIME type to an attachment kind. Any image/*
// type and application/pdf are accepted.
func ClassifyContentType(contentType string) (AttachmentKind, bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch {
	case ct == ContentTypePDF:
		return AttachmentPDF, true
	case strings.HasPrefix(ct, "image/") && len(ct) > len("image/"):
		return AttachmentImage, true
	}
	return "", false
}
