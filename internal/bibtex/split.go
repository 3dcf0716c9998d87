// Package bibtex reads the record and field structure of a BibTeX source.
//
// It is deliberately small: records are located with a brace-depth scanner,
// fields are read as name = value pairs, and no @string macro expansion or
// crossref resolution is performed.
package bibtex

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// Record is one @type{key, ...} block of a bibliography source.
type Record struct {
	Type string // entry type as written in the header, e.g. "inproceedings"
	Key  string // citation key as written in the header
	Body string // text between the header comma and the closing brace
	Raw  string // the whole block, from '@' through the closing brace
}

// nonEntryTypes are block types that carry no bibliography entry.
var nonEntryTypes = map[string]bool{
	"comment":  true,
	"preamble": true,
	"string":   true,
}

// IsEntryType reports whether a record of the given type is a
// bibliography entry rather than a comment, preamble or macro block.
func IsEntryType(typ string) bool {
	return !nonEntryTypes[strings.ToLower(typ)]
}

// Split scans src and returns its entry records in file order.
//
// A record starts at "@<type>{" and ends at the brace that balances the
// opening one; braces escaped with a backslash are not counted. Text
// between records is ignored, as BibTeX does. Comment, preamble and
// string blocks are skipped, as is an unterminated record at the end of
// the input.
func Split(src string) []Record {
	var records []Record

	i := 0
	for i < len(src) {
		at := strings.IndexByte(src[i:], '@')
		if at < 0 {
			break
		}
		start := i + at

		j := start + 1
		for j < len(src) && isIdentByte(src[j]) {
			j++
		}
		typ := src[start+1 : j]
		if typ == "" {
			i = start + 1
			continue
		}

		open := skipSpace(src, j)
		if open >= len(src) || src[open] != '{' {
			i = j
			continue
		}

		end, ok := matchBrace(src, open)
		if !ok {
			log.Debug().Str("type", typ).Int("offset", start).Msg("discarding unterminated record")
			break
		}
		i = end + 1

		if !IsEntryType(typ) {
			continue
		}

		inner := src[open+1 : end]
		key, body := inner, ""
		if comma := strings.IndexByte(inner, ','); comma >= 0 {
			key, body = inner[:comma], inner[comma+1:]
		}
		key = strings.TrimSpace(key)
		if key == "" {
			log.Debug().Str("type", typ).Int("offset", start).Msg("skipping record without key")
			continue
		}

		records = append(records, Record{
			Type: typ,
			Key:  key,
			Body: body,
			Raw:  src[start : end+1],
		})
	}

	return records
}

// matchBrace returns the index of the brace closing the one at s[open].
func matchBrace(s string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++ // escaped character never opens or closes a group
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}
