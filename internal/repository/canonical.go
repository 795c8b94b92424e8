package repository

import "strings"

// canonicalKey normalizes user-supplied RAs and class codes. Records are
// stored under the canonical form and every lookup canonicalizes first,
// so the same identifier resolves regardless of the case it was typed
// in. Activity ids are uuids and are never canonicalized.
func canonicalKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
