package modelstore

import (
	"strings"
	"unicode"
)

// Slugify lowercases name, turns every run of non-alphanumeric characters
// into a single underscore and trims underscores from both ends. Letters
// and digits of any script are kept.
// "Rice, Well Milled" becomes "rice_well_milled".
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pending := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}
