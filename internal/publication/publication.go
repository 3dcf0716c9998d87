// Package publication defines the emitted bibliography entry and builds
// entries from BibTeX records.
package publication

import (
	"strconv"
	"strings"
)

// Entry is the cleaned, page-ready form of one bibliography record.
// Field order here is the key order of the emitted document.
type Entry struct {
	// Identity
	Type string `json:"type"`
	Key  string `json:"key"`
	Year string `json:"year,omitempty"`

	// Display metadata (LaTeX markup stripped)
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	Booktitle string `json:"booktitle,omitempty"`
	Journal   string `json:"journal,omitempty"`
	Venue     string `json:"venue,omitempty"`

	// Bibliographic locators (verbatim)
	Pages     string `json:"pages,omitempty"`
	Volume    string `json:"volume,omitempty"`
	Number    string `json:"number,omitempty"`
	Publisher string `json:"publisher,omitempty"`

	// Site links
	PDF  string `json:"pdf,omitempty"`
	Code string `json:"code,omitempty"`

	Abstract string `json:"abstract,omitempty"`
	Keywords string `json:"keywords,omitempty"`
	DOI      string `json:"doi,omitempty"`
	URL      string `json:"url,omitempty"`

	// Site flags
	Selected       bool   `json:"selected"`
	Presentation   string `json:"presentation,omitempty"`
	AcceptanceRate string `json:"acceptance_rate,omitempty"`
}

// YearValue returns the numeric year used for ordering. Leading digits are
// honoured ("2021a" is 2021); a missing or non-numeric year is 0.
func (e Entry) YearValue() int {
	s := strings.TrimSpace(e.Year)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// VenueName returns the first non-empty venue-like field.
func (e Entry) VenueName() string {
	switch {
	case e.Booktitle != "":
		return e.Booktitle
	case e.Journal != "":
		return e.Journal
	default:
		return e.Venue
	}
}
