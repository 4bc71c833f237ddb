package exposure

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var edcDisplayNames = map[string]string{
	"bpa":         "BPA",
	"phthalate":   "Phthalates",
	"paraben":     "Parabens",
	"heavy_metal": "Heavy Metals",
}

var titleCaser = cases.Title(language.English)

// DisplayName turns an EDC type or category key into a label for messages,
// e.g. "heavy_metal" becomes "Heavy Metals" and "personal_care" becomes
// "Personal Care".
func DisplayName(key string) string {
	if name, ok := edcDisplayNames[key]; ok {
		return name
	}
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}

// RankedEntry is one key of an exposure map with its value.
type RankedEntry struct {
	Key   string  `json:"key" yaml:"key"`
	Value float64 `json:"value" yaml:"value"`
}

// Rank sorts a map by value descending, ties broken by key.
func Rank(m map[string]float64) []RankedEntry {
	entries := make([]RankedEntry, 0, len(m))
	for k, v := range m {
		entries = append(entries, RankedEntry{Key: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}
