package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPDFText_InvalidData(t *testing.T) {
	text, err := PDFText([]byte("this is not a pdf"))
	assert.Error(t, err)
	assert.Empty(t, text)
}

func TestPDFText_Empty(t *testing.T) {
	text, err := PDFText(nil)
	assert.Error(t, err)
	assert.Empty(t, text)
}

func TestPDFText_TruncatedHeader(t *testing.T) {
	text, err := PDFText([]byte("%PDF-1.4\n%%EOF"))
	assert.Error(t, err)
	assert.Empty(t, text)
}
