package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/matsen/bibsite/internal/bibtex"
	"github.com/spf13/cobra"
)

var citeRaw bool

func init() {
	citeCmd.Flags().BoolVar(&citeRaw, "raw", false, "Print the record exactly as it appears in the bibliography")
	rootCmd.AddCommand(citeCmd)
}

var citeCmd = &cobra.Command{
	Use:   "cite <key>",
	Short: "Print the BibTeX citation for an entry",
	Long: `Print the BibTeX citation for an entry.

By default, lines assigning site-internal fields (selected, type,
presentation, acceptance_rate, or internal_fields from .bibsite.yml) are
removed so the text can be pasted into a paper. Use --raw for the record
as written.`,
	Args: cobra.ExactArgs(1),
	RunE: runCite,
}

// CiteResponse is the response for the cite command.
type CiteResponse struct {
	Key    string `json:"key"`
	BibTeX string `json:"bibtex"`
}

func runCite(cmd *cobra.Command, args []string) error {
	s := mustLoadSite()
	text := mustCitation(s, args[0], citeRaw)

	if jsonOutput {
		outputJSON(CiteResponse{Key: args[0], BibTeX: text})
		return nil
	}
	fmt.Println(text)
	return nil
}

// mustCitation returns the citation text for key, exits on error.
func mustCitation(s *site, key string, raw bool) string {
	path := s.Config.BibliographyPath(s.Root)
	rec, err := findRecord(path, key)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return citationText(rec, raw, s.Config.InternalFields)
}

// findRecord returns the record with the given key from the bibliography at path.
func findRecord(path, key string) (bibtex.Record, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return bibtex.Record{}, fmt.Errorf("%s not found", path)
		}
		return bibtex.Record{}, fmt.Errorf("reading bibliography: %w", err)
	}
	for _, rec := range bibtex.Split(string(src)) {
		if rec.Key == key {
			return rec, nil
		}
	}
	return bibtex.Record{}, fmt.Errorf("entry not found: %s", key)
}

// citationText returns the record text, with internal fields removed unless raw.
func citationText(rec bibtex.Record, raw bool, internal []string) string {
	if raw {
		return strings.TrimSpace(rec.Raw)
	}
	if len(internal) == 0 {
		internal = bibtex.DefaultInternalFields
	}
	return strings.TrimSpace(bibtex.StripFields(rec.Raw, internal))
}
