// Package interpreter turns free-text language model replies into ordered
// field maps and display tables. Every function is pure and safe for
// concurrent use.
package interpreter

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Source records which path produced an interpretation.
type Source string

const (
	SourceStructured Source = "structured"
	SourceHeuristic  Source = "heuristic"
	SourceFallback   Source = "fallback"
)

// Interpretation is a FieldMap together with the path that produced it.
type Interpretation struct {
	Fields *FieldMap `json:"fields"`
	Source Source    `json:"source"`
}

// Interpret parses text into a FieldMap. A reply that is a non-empty JSON
// object is returned as-is; anything else goes through the line parser and
// the line-item extractor. When neither finds anything the map holds the
// cleaned text under ContentKey.
func Interpret(text string) Interpretation {
	if fm, ok := decodeObject(text); ok {
		return Interpretation{Fields: fm, Source: SourceStructured}
	}

	fm := NewFieldMap()
	parseLines(text, fm)
	if items := extractItems(text); len(items) > 0 {
		fm.Set(ItemsKey, items)
	}
	if fm.Len() > 0 {
		return Interpretation{Fields: fm, Source: SourceHeuristic}
	}

	fm.Set(ContentKey, cleanText(text))
	return Interpretation{Fields: fm, Source: SourceFallback}
}

// ParseToFieldMap returns the FieldMap for text. It never returns nil or an
// empty map.
func ParseToFieldMap(text string) *FieldMap {
	return Interpret(text).Fields
}

func cleanText(text string) string {
	return strings.TrimSpace(stripEmphasis(text))
}

// decodeObject parses text as a single JSON object, keeping member order.
// Arrays, scalars, empty objects and trailing data are rejected.
func decodeObject(text string) (*FieldMap, bool) {
	dec := json.NewDecoder(strings.NewReader(text))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, false
	}

	fm := NewFieldMap()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := tok.(string)
		if !ok {
			return nil, false
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, false
		}
		fm.Set(key, structuredValue(raw))
	}
	if _, err := dec.Token(); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	if fm.Len() == 0 {
		return nil, false
	}
	return fm, true
}

func structuredValue(raw json.RawMessage) any {
	if s, ok := jsonString(raw); ok {
		return s
	}
	return raw
}
