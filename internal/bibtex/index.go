package bibtex

import "strings"

// Index records the citation keys and DOIs seen in a bibliography so that
// repeated entries can be reported.
type Index struct {
	// Keys maps citation keys to the number of records using them
	Keys map[string]int
	// DOIs maps normalized DOI values to the first citation key using them
	DOIs map[string]string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		Keys: make(map[string]int),
		DOIs: make(map[string]string),
	}
}

// Add registers a record. It reports whether the key was already present
// and, if the DOI was already claimed, the key that claimed it first.
func (idx *Index) Add(key, doi string) (dupKey bool, doiOwner string) {
	dupKey = idx.Keys[key] > 0
	idx.Keys[key]++

	if norm := NormalizeDOI(doi); norm != "" {
		if owner, exists := idx.DOIs[norm]; exists {
			doiOwner = owner
		} else {
			idx.DOIs[norm] = key
		}
	}
	return dupKey, doiOwner
}

// NormalizeDOI normalizes a DOI for comparison.
// Removes common prefixes like "https://doi.org/" and lowercases.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "https://dx.doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(strings.TrimSpace(doi))
}
