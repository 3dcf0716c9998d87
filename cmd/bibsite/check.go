package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/matsen/bibsite/internal/bibtex"
	"github.com/matsen/bibsite/internal/config"
	"github.com/matsen/bibsite/internal/linkcheck"
	"github.com/matsen/bibsite/internal/pdf"
	"github.com/matsen/bibsite/internal/publication"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	checkLinks bool
	checkPDFs  bool
)

func init() {
	checkCmd.Flags().BoolVar(&checkLinks, "links", false, "Also check that url and doi links resolve (network)")
	checkCmd.Flags().BoolVar(&checkPDFs, "pdfs", true, "Check linked PDF files")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report problems in the bibliography",
	Long: `Report problems in the bibliography.

Checks for duplicate citation keys and DOIs, entries without a title or
year, and local PDFs that are missing, unreadable, or carry a different
DOI than the entry. With --links, url and doi links are requested (rate
limited by link_rate in .bibsite.yml).

Exits with status 5 when any problem is found.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// Problem kinds reported by check.
const (
	ProblemDuplicateKey = "duplicate_key"
	ProblemDuplicateDOI = "duplicate_doi"
	ProblemMissingTitle = "missing_title"
	ProblemMissingYear  = "missing_year"
	ProblemPDFMissing   = "pdf_missing"
	ProblemPDFBroken    = "pdf_unreadable"
	ProblemPDFMismatch  = "pdf_doi_mismatch"
	ProblemBrokenLink   = "broken_link"
)

// Problem is one issue found by check.
type Problem struct {
	Key    string `json:"key"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

// CheckResponse is the response for the check command.
type CheckResponse struct {
	Entries  int       `json:"entries"`
	Problems []Problem `json:"problems"`
}

// inspectPDF is replaced in tests.
var inspectPDF = pdf.Inspect

func runCheck(cmd *cobra.Command, args []string) error {
	s := mustLoadSite()

	path := s.Config.BibliographyPath(s.Root)
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			exitWithError(ExitError, "%s not found", s.display(path))
		}
		exitWithError(ExitError, "reading bibliography: %v", err)
	}

	entries := publication.FromSource(string(src))
	problems := checkEntries(entries)
	if checkPDFs {
		problems = append(problems, checkPDFFiles(s.Root, s.Config, entries)...)
	}

	if checkLinks {
		links := collectLinks(entries)
		log.Info().Int("links", len(links)).Msg("checking links")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		checker := linkcheck.New(s.Config.LinkRate, s.Config.LinkTimeout)
		results, err := checkLinksUntilCancelled(ctx, checker, links)
		stop()
		if err != nil {
			log.Warn().Err(err).Int("checked", len(results)).Int("links", len(links)).Msg("link check interrupted, reporting partial results")
		}
		problems = append(problems, linkProblems(results)...)
	}

	if jsonOutput {
		if problems == nil {
			problems = []Problem{}
		}
		outputJSON(CheckResponse{Entries: len(entries), Problems: problems})
	} else {
		printProblems(len(entries), problems)
	}

	if len(problems) > 0 {
		os.Exit(ExitCheckFailed)
	}
	return nil
}

// checkEntries reports duplicate keys and DOIs and missing title or year.
func checkEntries(entries []publication.Entry) []Problem {
	var problems []Problem
	idx := bibtex.NewIndex()

	for _, e := range entries {
		dupKey, doiOwner := idx.Add(e.Key, e.DOI)
		if dupKey {
			problems = append(problems, Problem{Key: e.Key, Kind: ProblemDuplicateKey})
		}
		if doiOwner != "" {
			problems = append(problems, Problem{
				Key:    e.Key,
				Kind:   ProblemDuplicateDOI,
				Detail: fmt.Sprintf("%s also used by %s", e.DOI, doiOwner),
			})
		}
		if e.Title == "" {
			problems = append(problems, Problem{Key: e.Key, Kind: ProblemMissingTitle})
		}
		if e.YearValue() == 0 {
			problems = append(problems, Problem{Key: e.Key, Kind: ProblemMissingYear})
		}
	}
	return problems
}

// checkPDFFiles inspects each local pdf link.
func checkPDFFiles(root string, cfg *config.Config, entries []publication.Entry) []Problem {
	var problems []Problem
	for _, e := range entries {
		if e.PDF == "" {
			continue
		}
		path, local := cfg.PDFPath(root, e.PDF)
		if !local {
			continue
		}

		if _, err := os.Stat(path); err != nil {
			problems = append(problems, Problem{Key: e.Key, Kind: ProblemPDFMissing, Detail: e.PDF})
			continue
		}

		info, err := inspectPDF(path)
		if err != nil {
			problems = append(problems, Problem{Key: e.Key, Kind: ProblemPDFBroken, Detail: err.Error()})
			continue
		}
		log.Debug().Str("key", e.Key).Int("pages", info.Pages).Str("doi", info.DOI).Msg("inspected pdf")

		if info.DOI != "" && e.DOI != "" && bibtex.NormalizeDOI(info.DOI) != bibtex.NormalizeDOI(e.DOI) {
			problems = append(problems, Problem{
				Key:    e.Key,
				Kind:   ProblemPDFMismatch,
				Detail: fmt.Sprintf("entry has %s, pdf has %s", e.DOI, info.DOI),
			})
		}
	}
	return problems
}

// collectLinks gathers the url and doi links of entries, in entry order.
func collectLinks(entries []publication.Entry) []linkcheck.Link {
	var links []linkcheck.Link
	for _, e := range entries {
		for _, f := range []struct{ name, value string }{
			{"url", e.URL},
			{"doi", e.DOI},
		} {
			if u := linkcheck.LinkURL(f.name, f.value); u != "" {
				links = append(links, linkcheck.Link{Key: e.Key, Field: f.name, URL: u})
			}
		}
	}
	return links
}

// linkChecker is the part of *linkcheck.Checker used by check.
type linkChecker interface {
	CheckAll(ctx context.Context, links []linkcheck.Link) ([]linkcheck.Result, error)
}

// checkLinksUntilCancelled checks links until ctx is done. Results gathered
// before cancellation are returned alongside the context error; a request
// cut short by the cancellation itself is dropped, not reported as broken.
func checkLinksUntilCancelled(ctx context.Context, c linkChecker, links []linkcheck.Link) ([]linkcheck.Result, error) {
	results, err := c.CheckAll(ctx, links)
	if ctx.Err() == nil {
		return results, err
	}

	kept := results[:0]
	for _, r := range results {
		if r.Status == linkcheck.StatusError && strings.Contains(r.Error, context.Canceled.Error()) {
			continue
		}
		kept = append(kept, r)
	}
	return kept, ctx.Err()
}

func linkProblems(results []linkcheck.Result) []Problem {
	var problems []Problem
	for _, r := range results {
		if r.OK() {
			continue
		}
		detail := fmt.Sprintf("%s %s: %s", r.Field, r.URL, r.Status)
		if r.StatusCode != 0 {
			detail += fmt.Sprintf(" (%d)", r.StatusCode)
		} else if r.Error != "" {
			detail += " (" + r.Error + ")"
		}
		problems = append(problems, Problem{Key: r.Key, Kind: ProblemBrokenLink, Detail: detail})
	}
	return problems
}

func printProblems(entries int, problems []Problem) {
	if len(problems) == 0 {
		outputHuman("%s %d entries, no problems found\n", text.FgGreen.Sprint("ok"), entries)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Key", "Problem", "Detail"})
	for _, p := range problems {
		t.AppendRow(table.Row{p.Key, text.FgRed.Sprint(strings.ReplaceAll(p.Kind, "_", " ")), p.Detail})
	}
	t.Render()
	outputHuman("%d problems in %d entries\n", len(problems), entries)
}
