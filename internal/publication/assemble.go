package publication

import (
	"sort"

	"github.com/matsen/bibsite/internal/bibtex"
)

// SelectedMarker is the exact raw value that marks an entry as selected.
const SelectedMarker = "true"

// fieldSpec binds a BibTeX field name to its Entry slot.
type fieldSpec struct {
	name  string
	clean bool
	set   func(*Entry, string)
}

// entryFields is the fixed set of fields carried into an Entry.
var entryFields = []fieldSpec{
	{"year", false, func(e *Entry, v string) { e.Year = v }},
	{"title", true, func(e *Entry, v string) { e.Title = v }},
	{"author", true, func(e *Entry, v string) { e.Author = v }},
	{"booktitle", true, func(e *Entry, v string) { e.Booktitle = v }},
	{"journal", true, func(e *Entry, v string) { e.Journal = v }},
	{"venue", true, func(e *Entry, v string) { e.Venue = v }},
	{"pages", false, func(e *Entry, v string) { e.Pages = v }},
	{"volume", false, func(e *Entry, v string) { e.Volume = v }},
	{"number", false, func(e *Entry, v string) { e.Number = v }},
	{"publisher", true, func(e *Entry, v string) { e.Publisher = v }},
	{"pdf", false, func(e *Entry, v string) { e.PDF = v }},
	{"code", false, func(e *Entry, v string) { e.Code = v }},
	{"abstract", true, func(e *Entry, v string) { e.Abstract = v }},
	{"keywords", false, func(e *Entry, v string) { e.Keywords = v }},
	{"doi", false, func(e *Entry, v string) { e.DOI = v }},
	{"url", false, func(e *Entry, v string) { e.URL = v }},
	{"presentation", false, func(e *Entry, v string) { e.Presentation = v }},
	{"acceptance_rate", false, func(e *Entry, v string) { e.AcceptanceRate = v }},
}

// Assemble builds an Entry from a record. Absent fields, and fields that
// are empty once cleaned, are left at their zero value and so omitted
// from the emitted document.
func Assemble(rec bibtex.Record) Entry {
	fields := rec.Fields()

	e := Entry{Type: rec.Type, Key: rec.Key}
	for _, f := range entryFields {
		v, ok := fields.Get(f.name)
		if !ok {
			continue
		}
		if f.clean {
			v = bibtex.Clean(v)
		}
		if v != "" {
			f.set(&e, v)
		}
	}

	raw, _ := fields.Get("selected")
	e.Selected = raw == SelectedMarker

	return e
}

// AssembleAll builds one Entry per record, in record order.
func AssembleAll(records []bibtex.Record) []Entry {
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, Assemble(rec))
	}
	return entries
}

// FromSource splits a bibliography source, assembles its entries and
// orders them newest first.
func FromSource(src string) []Entry {
	entries := AssembleAll(bibtex.Split(src))
	SortByYear(entries)
	return entries
}

// SortByYear orders entries by descending numeric year. Entries with the
// same year keep their relative order.
func SortByYear(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].YearValue() > entries[j].YearValue()
	})
}
