package interpreter

import (
	"regexp"
	"strings"
)

// narrativeMarkers flag connective prose that is never field data.
var narrativeMarkers = []string{
	"the image displays",
	"this document contains",
	"according to the image",
}

var fieldLine = regexp.MustCompile(`^[*\s]*([^:]+):\s*(.+)$`)

// parseLines adds every "label: value" line of text to fm, keyed by the
// generic canonical label. Later lines overwrite earlier ones.
func parseLines(text string, fm *FieldMap) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isNarrative(line) {
			continue
		}
		m := fieldLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		label := strings.TrimSpace(stripEmphasis(m[1]))
		value := strings.TrimSpace(stripEmphasis(m[2]))
		if label == "" || value == "" {
			continue
		}
		if label = Normalize(label); label != "" {
			fm.Set(label, value)
		}
	}
}

func isNarrative(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range narrativeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func stripEmphasis(s string) string {
	return strings.ReplaceAll(s, "*", "")
}
