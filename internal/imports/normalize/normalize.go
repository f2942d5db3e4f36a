// Package normalize holds the pure text canonicalization used for matching
// free-text spreadsheet references against catalog names.
package normalize

import "strings"

// Organizational form phrases are collapsed to their common abbreviations
// before punctuation stripping, so "ООО «Ромашка»" and "Общество с
// ограниченной ответственностью Ромашка" compare equal.
var orgFormReplacer = strings.NewReplacer(
	"общество с ограниченной ответственностью", "ооо",
	"строительное предприятие", "сп",
)

var orgStripChars = []string{" ", "\t", " ", "\"", "'", "«", "»", "„", "“", "”", "-"}

// OrgName canonicalizes an organization name. Idempotent.
func OrgName(s string) string {
	s = strings.ToLower(s)
	s = orgFormReplacer.Replace(s)
	for _, ch := range orgStripChars {
		s = strings.ReplaceAll(s, ch, "")
	}
	return s
}

// Generic canonicalizes units, work types, characteristics and material
// names: trim and lower-case only. Idempotent.
func Generic(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
