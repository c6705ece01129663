// Package pricing maps linen category names to unit prices and resolves the
// price used for a batch item.
package pricing

import (
	"sort"
	"strings"
	"unicode"
)

// DefaultUnitPrice is charged when nothing else prices an item.
const DefaultUnitPrice = 10.00

// names shorter than this never match as a fragment of a table entry
const minPartialLen = 3

type Source string

const (
	SourceExplicit Source = "explicit"
	SourceStored   Source = "stored"
	SourceCategory Source = "category"
	SourceTable    Source = "table"
	SourceFallback Source = "fallback"
)

type Resolution struct {
	Price  float64
	Source Source
}

// Fallback reports whether the price is the fixed default rather than a real price.
func (r Resolution) Fallback() bool {
	return r.Source == SourceFallback
}

type Table struct {
	prices    map[string]float64
	aliases   map[string]string
	keys      []string
	aliasKeys []string
	fallback  float64
}

type Entry struct {
	Name  string
	Price float64
}

// DefaultEntries is the standard price list used to seed categories.
var DefaultEntries = []Entry{
	{Name: "Bed Sheet", Price: 15.50},
	{Name: "Duvet Cover", Price: 25.00},
	{Name: "Pillow Case", Price: 8.75},
	{Name: "Towel", Price: 12.00},
	{Name: "Bath Towel", Price: 12.00},
	{Name: "Hand Towel", Price: 6.50},
	{Name: "Face Cloth", Price: 4.00},
	{Name: "Table Cloth", Price: 18.00},
	{Name: "Napkin", Price: 3.50},
	{Name: "Blanket", Price: 30.00},
	{Name: "Bath Mat", Price: 9.00},
	{Name: "Apron", Price: 7.50},
	{Name: "Uniform", Price: 20.00},
	{Name: "Curtain", Price: 35.00},
}

var defaultAliases = map[string]string{
	"pillowcase":  "pillow case",
	"pillow slip": "pillow case",
	"pillow":      "pillow case",
	"sheet":       "bed sheet",
	"bedsheet":    "bed sheet",
	"flat sheet":  "bed sheet",
	"duvet":       "duvet cover",
	"comforter":   "duvet cover",
	"serviette":   "napkin",
	"tablecloth":  "table cloth",
	"washcloth":   "face cloth",
	"flannel":     "face cloth",
	"facecloth":   "face cloth",
	"bathmat":     "bath mat",
	"overall":     "uniform",
	"drape":       "curtain",
}

// NewTable builds a lookup table. A fallback <= 0 selects DefaultUnitPrice.
func NewTable(entries []Entry, fallback float64) *Table {
	if fallback <= 0 {
		fallback = DefaultUnitPrice
	}
	t := &Table{
		prices:   make(map[string]float64, len(entries)),
		aliases:  make(map[string]string, len(defaultAliases)),
		fallback: fallback,
	}
	for _, e := range entries {
		key := Normalize(e.Name)
		if key == "" {
			continue
		}
		t.prices[key] = e.Price
	}
	for alias, target := range defaultAliases {
		t.aliases[Normalize(alias)] = Normalize(target)
	}
	for key := range t.prices {
		t.keys = append(t.keys, key)
	}
	for key := range t.aliases {
		t.aliasKeys = append(t.aliasKeys, key)
	}
	// longest first so "bath towel" wins over "towel" in containment matches
	longestFirst(t.keys)
	longestFirst(t.aliasKeys)
	return t
}

func longestFirst(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
}

func DefaultTable(fallback float64) *Table {
	return NewTable(DefaultEntries, fallback)
}

func (t *Table) FallbackPrice() float64 {
	return t.fallback
}

// Lookup finds the price for a category name: exact, alias, then containment.
func (t *Table) Lookup(name string) (float64, bool) {
	key := Normalize(name)
	if key == "" {
		return 0, false
	}
	if price, ok := t.prices[key]; ok {
		return price, true
	}
	if target, ok := t.aliases[key]; ok {
		if price, ok := t.prices[target]; ok {
			return price, true
		}
	}
	for _, candidate := range t.keys {
		if strings.Contains(key, candidate) {
			return t.prices[candidate], true
		}
	}
	for _, alias := range t.aliasKeys {
		if strings.Contains(key, alias) {
			if price, ok := t.prices[t.aliases[alias]]; ok {
				return price, true
			}
		}
	}
	if len(key) >= minPartialLen {
		for _, candidate := range t.keys {
			if strings.Contains(candidate, key) {
				return t.prices[candidate], true
			}
		}
	}
	return 0, false
}

// Resolve picks the unit price for an item in order: explicit price, the
// item's stored snapshot, the category's current price, the table entry for
// the category name, and finally the fixed fallback.
func (t *Table) Resolve(explicit *float64, stored, categoryPrice float64, categoryName string) Resolution {
	switch {
	case explicit != nil && *explicit > 0:
		return Resolution{Price: *explicit, Source: SourceExplicit}
	case stored > 0:
		return Resolution{Price: stored, Source: SourceStored}
	case categoryPrice > 0:
		return Resolution{Price: categoryPrice, Source: SourceCategory}
	}
	if price, ok := t.Lookup(categoryName); ok {
		return Resolution{Price: price, Source: SourceTable}
	}
	return Resolution{Price: t.fallback, Source: SourceFallback}
}

// Normalize lowercases a name, collapses punctuation and whitespace to single
// spaces and strips a trailing plural from every word.
func Normalize(name string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space && b.Len() > 0 {
			b.WriteByte(' ')
			space = true
		}
	}
	words := strings.Fields(b.String())
	for i, w := range words {
		words[i] = singular(w)
	}
	return strings.Join(words, " ")
}

func singular(word string) string {
	switch {
	case len(word) > 4 && (strings.HasSuffix(word, "ches") || strings.HasSuffix(word, "shes") ||
		strings.HasSuffix(word, "sses") || strings.HasSuffix(word, "xes")):
		return word[:len(word)-2]
	case len(word) > 3 && strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss"):
		return word[:len(word)-1]
	}
	return word
}
