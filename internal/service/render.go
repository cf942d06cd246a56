package service

import (
	"fmt"

	"docextract/internal/domain"
	"docextract/internal/interpreter"
	"docextract/internal/metrics"
)

// Rendering is one view of a stored message.
type Rendering struct {
	Format domain.ResponseFormat  `json:"format"`
	Text   string                 `json:"text"`
	Fields *interpreter.FieldMap  `json:"fields,omitempty"`
	Rows   []interpreter.TableRow `json:"rows,omitempty"`
	Source interpreter.Source     `json:"source,omitempty"`
}

// Render interprets msg in the requested format. User and system messages,
// and the natural format, return the content unchanged. The interpretation
// is recomputed on every call.
func Render(msg *domain.Message, format domain.ResponseFormat) (*Rendering, error) {
	if !domain.AllowedResponseFormats[format] {
		return nil, domain.ErrInvalidFormat
	}
	if msg.Role != domain.RoleAssistant || format == domain.FormatNatural {
		return &Rendering{Format: domain.FormatNatural, Text: msg.Content}, nil
	}

	interp := interpreter.Interpret(msg.Content)
	metrics.Interpretations.WithLabelValues(string(interp.Source)).Inc()

	out := &Rendering{Format: format, Source: interp.Source}
	switch format {
	case domain.FormatJSON:
		text, err := interp.Fields.Indent()
		if err != nil {
			return nil, fmt.Errorf("formatting fields: %w", err)
		}
		out.Fields = interp.Fields
		out.Text = string(text)
	case domain.FormatTable:
		out.Rows = interpreter.Project(interp.Fields, msg.Content)
	}
	return out, nil
}
