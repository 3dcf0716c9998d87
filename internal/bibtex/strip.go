package bibtex

import "strings"

// DefaultInternalFields are site bookkeeping fields that should not appear
// in a citation handed to readers.
var DefaultInternalFields = []string{"selected", "type", "presentation", "acceptance_rate"}

// StripFields removes every line of a raw record that assigns one of the
// given fields. Matching is by "<field> =" anywhere in the trimmed line, so
// a multi-line value only loses its first line; keep internal fields on a
// single line.
func StripFields(raw string, fields []string) string {
	lines := strings.Split(raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !assignsAny(strings.TrimSpace(line), fields) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func assignsAny(line string, fields []string) bool {
	for _, f := range fields {
		if strings.Contains(line, f+" =") {
			return true
		}
	}
	return false
}
