package normalization

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Escape sequences left behind by spreadsheet and XML exporters. Order
// matters: the OOXML forms are matched before the bare backslash forms.
var escapeArtifacts = strings.NewReplacer(
	"_x000D_", " ",
	"_x000d_", " ",
	"_x000A_", " ",
	"_x000a_", " ",
	"_x0009_", " ",
	"&#xD;", " ",
	"&#xA;", " ",
	"&#13;", " ",
	"&#10;", " ",
	"&#9;", " ",
	`\r\n`, " ",
	`\r`, " ",
	`\n`, " ",
	`\t`, " ",
)

// NormalizeCode is the join key for item codes: lower-cased and trimmed.
func NormalizeCode(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeDescription folds parser escape artifacts, whitespace runs,
// diacritics and case so descriptions can be used as join keys.
func NormalizeDescription(s string) string {
	if s == "" {
		return ""
	}
	s = escapeArtifacts.Replace(s)
	s = stripDiacritics(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeCodePtr is NormalizeCode for optional values; nil stays nil.
func NormalizeCodePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := NormalizeCode(*s)
	return &v
}
