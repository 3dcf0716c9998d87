package bibtex

import "strings"

// Field is a single name = value pair from a record body.
type Field struct {
	Name  string
	Value string // inner text with delimiters removed and whitespace trimmed
}

// Fields is the ordered field list of one record.
type Fields []Field

// Get returns the value of the first field with exactly the given name.
// Names are compared case-sensitively. The boolean is false when the
// field is absent, which is distinct from a present but empty value.
func (fs Fields) Get(name string) (string, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Fields parses the record body.
func (r Record) Fields() Fields {
	return ParseFields(r.Body)
}

// Field returns the named field of the record.
func (r Record) Field(name string) (string, bool) {
	return ParseFields(r.Body).Get(name)
}

// ParseFields reads the name = value pairs of a record body.
//
// Values may be brace-delimited (nested braces are balanced), quoted
// (ending at the first unescaped quote outside any brace group) or bare
// tokens such as numbers, which run to the next comma. Values may span
// lines. Text that does not form a pair is skipped up to the next comma.
func ParseFields(body string) Fields {
	var fields Fields

	i := 0
	for {
		i = skipSeparators(body, i)
		if i >= len(body) {
			break
		}

		nameStart := i
		for i < len(body) && isNameByte(body[i]) {
			i++
		}
		if i == nameStart {
			i = nextComma(body, i+1)
			continue
		}
		name := body[nameStart:i]

		i = skipSpace(body, i)
		if i >= len(body) || body[i] != '=' {
			i = nextComma(body, i)
			continue
		}
		i = skipSpace(body, i+1)

		value, next, ok := readValue(body, i)
		i = next
		if !ok {
			continue
		}
		fields = append(fields, Field{Name: name, Value: strings.TrimSpace(value)})
	}

	return fields
}

// readValue reads the value starting at body[i] and returns it with the
// index just past it.
func readValue(body string, i int) (string, int, bool) {
	if i >= len(body) {
		return "", i, false
	}

	switch body[i] {
	case '{':
		end, ok := matchBrace(body, i)
		if !ok {
			return "", len(body), false
		}
		return body[i+1 : end], end + 1, true

	case '"':
		depth := 0
		for j := i + 1; j < len(body); j++ {
			switch body[j] {
			case '\\':
				j++
			case '{':
				depth++
			case '}':
				if depth > 0 {
					depth--
				}
			case '"':
				if depth == 0 {
					return body[i+1 : j], j + 1, true
				}
			}
		}
		return "", len(body), false

	default:
		end := nextComma(body, i)
		value := strings.TrimSpace(body[i:end])
		return value, end, value != ""
	}
}

func isNameByte(c byte) bool {
	return isIdentByte(c) || c == '-' || c == ':' || c == '.'
}

func skipSeparators(s string, i int) int {
	for i < len(s) && (isSpace(s[i]) || s[i] == ',') {
		i++
	}
	return i
}

func nextComma(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	if idx := strings.IndexByte(s[i:], ','); idx >= 0 {
		return i + idx
	}
	return len(s)
}
