package interpreter

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ItemsKey is the reserved FieldMap key holding recovered line items.
const ItemsKey = "Items"

// ContentKey holds the cleaned raw text when nothing structured was found.
const ContentKey = "content"

// LineItem is one itemized entry recovered from a quotation or invoice.
type LineItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
}

// FieldMap is an ordered label to value mapping. Values are strings, the
// []LineItem stored under ItemsKey, or json.RawMessage for non-string values
// of a structured reply.
type FieldMap struct {
	keys   []string
	values map[string]any
}

// NewFieldMap returns an empty FieldMap.
func NewFieldMap() *FieldMap {
	return &FieldMap{values: make(map[string]any)}
}

// Set stores value under key. Overwriting keeps the key's first position.
func (m *FieldMap) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *FieldMap) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// String returns the value under key as text. Structured values are
// returned as their JSON text.
func (m *FieldMap) String(key string) string {
	v, ok := m.values[key]
	if !ok {
		return ""
	}
	return valueText(v)
}

// Keys returns the keys in insertion order.
func (m *FieldMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *FieldMap) Len() int { return len(m.keys) }

// Items returns the line items stored under ItemsKey. Structured replies
// carrying a JSON array there are converted element by element.
func (m *FieldMap) Items() ([]LineItem, bool) {
	switch v := m.values[ItemsKey].(type) {
	case []LineItem:
		return v, true
	case json.RawMessage:
		var elems []json.RawMessage
		if err := json.Unmarshal(v, &elems); err != nil {
			return nil, false
		}
		items := make([]LineItem, len(elems))
		for i, e := range elems {
			items[i] = itemFromJSON(e)
		}
		return items, true
	}
	return nil, false
}

// MarshalJSON writes the map as a JSON object in insertion order.
func (m *FieldMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalNoEscape(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalNoEscape(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Indent renders the map as JSON indented by two spaces.
func (m *FieldMap) Indent() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// valueText renders a stored value as display text. JSON scalars keep their
// literal spelling; arrays and objects become compact JSON.
func valueText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.RawMessage:
		if s, ok := jsonString(t); ok {
			return s
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, t); err != nil {
			return string(t)
		}
		return buf.String()
	default:
		b, err := marshalNoEscape(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// itemFromJSON converts one element of a structured Items array. Falsy
// members (missing, null, false, 0, "") become empty strings.
func itemFromJSON(raw json.RawMessage) LineItem {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return LineItem{}
	}
	return LineItem{
		Name:     truthyText(obj["name"]),
		Quantity: truthyText(obj["quantity"]),
		Price:    truthyText(obj["price"]),
	}
}

func truthyText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	switch lit := strings.TrimSpace(string(raw)); {
	case lit == "null" || lit == "false":
		return ""
	case lit == "true":
		return lit
	}
	if s, ok := jsonString(raw); ok {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if f, err := strconv.ParseFloat(n.String(), 64); err == nil && f == 0 {
			return ""
		}
		return n.String()
	}
	return valueText(raw)
}

// jsonString decodes raw when it is a JSON string literal.
func jsonString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false
	}
	return s, true
}
