package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Latin letters that do not decompose into a base letter plus a mark.
var replacer = strings.NewReplacer(
	"ß", "ss", "æ", "ae", "ø", "o", "đ", "d", "ł", "l", "ı", "i", "œ", "oe",
)

// Generate creates a file- and URL-friendly slug from name. Accents are
// dropped, so "José Peña" becomes "jose-pena".
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	s = replacer.Replace(s)

	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
