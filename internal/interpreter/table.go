package interpreter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf16"
)

// ContentLabel labels the single row emitted when nothing else was found.
const ContentLabel = "Content"

// TableRow is one flattened field/value display pair.
type TableRow struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// maxNarrativeLabel is the longest label mentioning an image or document
// that is still treated as a field name.
const maxNarrativeLabel = 20

var (
	leadingSeparators  = regexp.MustCompile(`^[,+\-_\s]+`)
	trailingSeparators = regexp.MustCompile(`[,+\-_\s]+$`)
)

// narrativePrefixes are stripped from the start of display values, in order.
var narrativePrefixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(the\s+)?image\s+(displays?|shows?|contains?)\s*`),
	regexp.MustCompile(`(?i)^this\s+(document|quotation|invoice)\s+(contains?|shows?|displays?)\s*`),
	regexp.MustCompile(`(?i)^according\s+to\s+the\s+(document|image)\s*,?\s*`),
	regexp.MustCompile(`(?i)^based\s+on\s+the\s+(document|image)\s*,?\s*`),
	regexp.MustCompile(`(?i)^from\s+the\s+(document|image)\s*,?\s*`),
	regexp.MustCompile(`(?i)^document\s+details\s*:?\s*`),
	regexp.MustCompile(`(?i)^in\s+summary\s*,?\s*`),
}

// ParseToTableRows interprets text and flattens the result into display
// rows. The result is never empty.
func ParseToTableRows(text string) []TableRow {
	return Project(ParseToFieldMap(text), text)
}

// Project flattens fm into display rows in insertion order, expanding line
// items at the position of ItemsKey. raw supplies the single Content row
// emitted when no other row survives.
func Project(fm *FieldMap, raw string) []TableRow {
	var rows []TableRow
	for _, key := range fm.Keys() {
		if key == ItemsKey {
			if items, ok := fm.Items(); ok {
				rows = append(rows, itemRows(items)...)
				continue
			}
		}

		label := cleanLabel(key)
		if isNarrativeLabel(label) {
			continue
		}
		label = NormalizeDisplay(label)
		if label == "" {
			continue
		}
		rows = append(rows, TableRow{Field: label, Value: cleanValue(fm.String(key))})
	}

	if len(rows) == 0 {
		return []TableRow{{Field: ContentLabel, Value: cleanText(raw)}}
	}
	return rows
}

func itemRows(items []LineItem) []TableRow {
	rows := make([]TableRow, 0, len(items)*3)
	for i, it := range items {
		k := i + 1
		rows = append(rows, TableRow{Field: fmt.Sprintf("Item %d Name", k), Value: it.Name})
		if it.Quantity != "" {
			rows = append(rows, TableRow{Field: fmt.Sprintf("Item %d Quantity", k), Value: it.Quantity})
		}
		if it.Price != "" {
			rows = append(rows, TableRow{Field: fmt.Sprintf("Item %d Price", k), Value: it.Price})
		}
	}
	return rows
}

func cleanLabel(label string) string {
	label = strings.TrimSpace(stripEmphasis(label))
	label = leadingSeparators.ReplaceAllString(label, "")
	return trailingSeparators.ReplaceAllString(label, "")
}

// isNarrativeLabel reports labels that read like leaked prose. Length is
// counted in UTF-16 code units.
func isNarrativeLabel(label string) bool {
	lower := strings.ToLower(label)
	if !strings.Contains(lower, "image") && !strings.Contains(lower, "document") {
		return false
	}
	return len(utf16.Encode([]rune(label))) > maxNarrativeLabel
}

func cleanValue(value string) string {
	value = strings.TrimSpace(stripEmphasis(value))
	for _, p := range narrativePrefixes {
		value = p.ReplaceAllString(value, "")
	}
	return value
}
