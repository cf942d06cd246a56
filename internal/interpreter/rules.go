package interpreter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// matcher reports whether a lower-cased label satisfies a rule.
type matcher func(lower string) bool

func allOf(subs ...string) matcher {
	return func(lower string) bool {
		for _, s := range subs {
			if !strings.Contains(lower, s) {
				return false
			}
		}
		return true
	}
}

func anyOf(subs ...string) matcher {
	return func(lower string) bool {
		for _, s := range subs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}

func both(a, b matcher) matcher {
	return func(lower string) bool {
		return a(lower) && b(lower)
	}
}

// Rule maps labels accepted by Match onto a canonical Label.
type Rule struct {
	Label string
	Match matcher
}

// RuleSet is an ordered rule table. The first matching rule wins; labels no
// rule accepts go through the set's fallback.
type RuleSet struct {
	name     string
	rules    []Rule
	fallback func(string) string
}

// Name identifies the rule set in logs and tests.
func (rs *RuleSet) Name() string { return rs.name }

// Labels returns the canonical labels of the set in rule order.
func (rs *RuleSet) Labels() []string {
	out := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		out[i] = r.Label
	}
	return out
}

// Normalize maps label to its canonical form. An empty result means the
// label carried nothing usable.
func (rs *RuleSet) Normalize(label string) string {
	lower := strings.ToLower(label)
	for _, r := range rs.rules {
		if r.Match(lower) {
			return r.Label
		}
	}
	return rs.fallback(label)
}

// Normalize canonicalizes a FieldMap label with GenericRules.
func Normalize(label string) string { return GenericRules.Normalize(label) }

// NormalizeDisplay canonicalizes a table label with DisplayRules.
func NormalizeDisplay(label string) string { return DisplayRules.Normalize(label) }

// GenericRules canonicalizes labels while building a FieldMap.
var GenericRules = &RuleSet{
	name: "generic",
	rules: []Rule{
		{"Quotation Number", allOf("quotation", "number")},
		{"Invoice Number", allOf("invoice", "number")},
		{"Business Type", allOf("business", "type")},
		{"Company Name", anyOf("company", "supplier")},
		{"Customer Name", allOf("customer", "name")},
		{"Vehicle Registration", allOf("vehicle", "registration")},
		{"Claim Number", allOf("claim", "number")},
		{"Total Cost", both(allOf("total"), anyOf("cost", "amount"))},
		{"Phone Number", anyOf("mobile", "phone", "contact")},
		{"Email", anyOf("email", "e-mail")},
		{"Address", anyOf("address", "location")},
		{"Date", allOf("date")},
		{"Building", anyOf("building", "bldg")},
		{"Road", anyOf("road", "street")},
		{"Block", allOf("block")},
		{"Quantity", anyOf("quantity", "qty")},
		{"Price", allOf("price")},
		{"Garage", allOf("garage")},
	},
	fallback: genericFallback,
}

// DisplayRules canonicalizes labels for table rows.
var DisplayRules = &RuleSet{
	name: "display",
	rules: []Rule{
		{"Quotation Number", allOf("quotation", "number")},
		{"Invoice Number", allOf("invoice", "number")},
		{"Order Number", allOf("order", "number")},
		{"Company Name", allOf("company", "name")},
		{"Supplier Name", allOf("supplier", "name")},
		{"Customer Name", allOf("customer", "name")},
		{"Total Amount", allOf("total", "amount")},
		{"Phone Number", anyOf("mobile", "phone")},
		{"Email", anyOf("email", "e-mail")},
		{"Address", anyOf("address", "location")},
		{"Date", allOf("date")},
		{"Building", anyOf("building", "bldg")},
		{"Road", anyOf("road", "street")},
		{"Block", allOf("block")},
		{"Quantity", anyOf("quantity", "qty")},
		{"Unit Price", allOf("price", "unit")},
		{"Description", anyOf("description", "item")},
	},
	fallback: displayFallback,
}

var (
	separatorRun = regexp.MustCompile(`[*+\-_]+`)
	nonWordChar  = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
)

func genericFallback(label string) string {
	return titleCase(separatorRun.ReplaceAllString(label, " "))
}

func displayFallback(label string) string {
	return titleCase(nonWordChar.ReplaceAllString(label, ""))
}

// titleCase collapses whitespace and upper-cases the first rune of every
// word, lower-casing the rest.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
