// Package export writes interpreted table rows as downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"docextract/internal/interpreter"
)

// BOM is the UTF-8 byte order mark, needed for Excel on Windows to detect the encoding.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Header is the first row of every export.
var Header = []string{"Field Name", "Extracted Value"}

// CSVWriter wraps csv.Writer for exporting table rows.
type CSVWriter struct {
	out io.Writer
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{out: w, csv: csv.NewWriter(w)}
}

// WriteHeader writes the BOM followed by the header row.
func (w *CSVWriter) WriteHeader() error {
	if _, err := w.out.Write(BOM); err != nil {
		return err
	}
	return w.csv.Write(Header)
}

// WriteRows writes one record per row.
func (w *CSVWriter) WriteRows(rows []interpreter.TableRow) error {
	for _, r := range rows {
		if err := w.csv.Write([]string{r.Field, r.Value}); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

// WriteCSV writes a complete CSV document for rows.
func WriteCSV(w io.Writer, rows []interpreter.TableRow) error {
	cw := NewCSVWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	if err := cw.WriteRows(rows); err != nil {
		return fmt.Errorf("writing csv rows: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	multiUnderscore = regexp.MustCompile(`_{2,}`)
)

// SanitizeFilename replaces characters other than letters, digits, - and _
// with _, collapses repeats, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {sanitized_base}_{YYYY-MM-DD}.{ext}. An empty base
// becomes "extraction".
func BuildFilename(base, ext string) string {
	sanitized := SanitizeFilename(base)
	if sanitized == "" {
		sanitized = "extraction"
	}
	return fmt.Sprintf("%s_%s.%s", sanitized, time.Now().Format("2006-01-02"), ext)
}
