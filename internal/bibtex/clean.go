package bibtex

import (
	"regexp"
	"strings"
)

var (
	commandWithArg = regexp.MustCompile(`\\[a-zA-Z]+\{([^}]*)\}`)
	bareCommand    = regexp.MustCompile(`\\[a-zA-Z]+`)
	braceGroup     = regexp.MustCompile(`\{([^}]*)\}`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// Clean turns a LaTeX-marked field value into display prose.
//
// Steps run in a fixed order, each on the output of the previous one:
// \cmd{text} becomes text, bare \cmd is dropped, {text} becomes text,
// "--" becomes an en dash, whitespace runs collapse to one space, and the
// result is trimmed.
func Clean(s string) string {
	s = commandWithArg.ReplaceAllString(s, "${1}")
	s = bareCommand.ReplaceAllString(s, "")
	s = braceGroup.ReplaceAllString(s, "${1}")
	s = strings.ReplaceAll(s, "--", "–")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
