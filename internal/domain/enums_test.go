package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyContentType(t *testing.T) {
	tests := []struct {
		in   string
		want AttachmentKind
		ok   bool
	}{
		{"image/png", AttachmentImage, true},
		{"IMAGE/JPEG", AttachmentImage, true},
		{"image/webp; q=0.9", AttachmentImage, true},
		{"application/pdf", AttachmentPDF, true},
		{"image/", "", false},
		{"text/plain", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			kind, ok := ClassifyContentType(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, kind)
		})
	}
}
