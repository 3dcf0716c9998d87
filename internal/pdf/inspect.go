// Package pdf inspects PDF files linked from bibliography entries.
package pdf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// doiScanPages is how many leading pages are searched for a DOI; publishers
// print it on the first page or two.
const doiScanPages = 3

// doiPattern matches 10.XXXX/... where XXXX is 4-9 digits.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// Info summarizes a PDF file.
type Info struct {
	Pages int    `json:"pages"`
	DOI   string `json:"doi,omitempty"` // first DOI found on the leading pages
}

// Inspect opens a PDF and reports its page count and the first DOI printed
// on its leading pages. A PDF without a DOI is not an error.
func Inspect(path string) (*Info, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info := &Info{Pages: r.NumPage()}

	maxPages := doiScanPages
	if info.Pages < maxPages {
		maxPages = info.Pages
	}

	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if doi := FindDOI(text); doi != "" {
			info.DOI = doi
			break
		}
	}

	return info, nil
}

// FindDOI returns the first plausible DOI in text, or "".
func FindDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}
