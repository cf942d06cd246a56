package interpreter

import (
	"regexp"
	"strings"
)

// itemPatterns run independently over the whole text. A line matching more
// than one pattern yields one item per pattern.
var itemPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Item\s+(\d+):\s*([^(]+)\s*\(([^)]+)\)`),
	regexp.MustCompile(`(?i)\+\s*Item\s+(\d+):\s*([^(]+)\s*\(([^)]+)\)`),
	regexp.MustCompile(`(?i)(\d+)\.\s*([^(]+)\s*\(([^)]+)\)`),
}

var (
	quantityToken = regexp.MustCompile(`(?i)quantity:\s*(\d+)`)
	priceToken    = regexp.MustCompile(`(?i)price:\s*([^,]+)`)
)

// extractItems returns every line item found in text, pattern by pattern and
// in order of occurrence within each pattern.
func extractItems(text string) []LineItem {
	var items []LineItem
	for _, p := range itemPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			items = append(items, LineItem{
				Name:     strings.TrimSpace(m[2]),
				Quantity: firstGroup(quantityToken, m[3]),
				Price:    strings.TrimSpace(firstGroup(priceToken, m[3])),
			})
		}
	}
	return items
}

func firstGroup(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}
