package part

import "strings"

// NormalizeIdentifier canonicalizes a raw identifier or name token for
// comparison: leading and trailing whitespace is trimmed and internal runs
// of whitespace collapse to a single space. Case is preserved so the
// original spelling survives for display.
func NormalizeIdentifier(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}

// FoldName returns the case-folded comparison form of a token. The token
// is normalized first so "  Engine Assembly " and "engine assembly"
// compare equal.
func FoldName(raw string) string {
	return strings.ToLower(NormalizeIdentifier(raw))
}
