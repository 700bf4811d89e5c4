// Package filter implements the pure text and filename transformations
// applied to messages before relaying. Functions here have no side effects
// and no I/O.
package filter

import (
	"strings"

	"github.com/edgard/relaybot/internal/tenant"
)

// ApplyTextFilters applies each replacement rule once, in insertion order,
// as a literal substring replacement. Each pass operates on the output of
// the previous pass; no re-scan happens after the last rule. An empty rule
// set returns the input unchanged.
func ApplyTextFilters(text string, rules []tenant.WordFilter) string {
	for _, r := range rules {
		text = strings.ReplaceAll(text, r.Old, r.New)
	}
	return text
}

// ApplyFileRename returns the replacement filename when name is an exact
// key in renames, otherwise name unchanged. Whole-name matching only, no
// patterns.
func ApplyFileRename(name string, renames map[string]string) string {
	if renamed, ok := renames[name]; ok {
		return renamed
	}
	return name
}
