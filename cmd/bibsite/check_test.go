package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/matsen/bibsite/internal/config"
	"github.com/matsen/bibsite/internal/linkcheck"
	"github.com/matsen/bibsite/internal/pdf"
	"github.com/matsen/bibsite/internal/publication"
)

func problemKinds(problems []Problem) map[string][]string {
	kinds := make(map[string][]string)
	for _, p := range problems {
		kinds[p.Key] = append(kinds[p.Key], p.Kind)
	}
	return kinds
}

func TestCheckEntries(t *testing.T) {
	entries := []publication.Entry{
		{Key: "a", Title: "A", Year: "2020", DOI: "10.1000/abc"},
		{Key: "a", Title: "A again", Year: "2020"},
		{Key: "b", Title: "B", Year: "2021", DOI: "https://doi.org/10.1000/ABC"},
		{Key: "c", Year: "n.d."},
	}

	kinds := problemKinds(checkEntries(entries))

	if got := kinds["a"]; len(got) != 1 || got[0] != ProblemDuplicateKey {
		t.Errorf("a problems = %v, want [duplicate_key]", got)
	}
	if got := kinds["b"]; len(got) != 1 || got[0] != ProblemDuplicateDOI {
		t.Errorf("b problems = %v, want [duplicate_doi]", got)
	}
	if got := kinds["c"]; len(got) != 2 || got[0] != ProblemMissingTitle || got[1] != ProblemMissingYear {
		t.Errorf("c problems = %v, want [missing_title missing_year]", got)
	}
}

func TestCheckEntries_Clean(t *testing.T) {
	entries := []publication.Entry{
		{Key: "a", Title: "A", Year: "2020"},
		{Key: "b", Title: "B", Year: "2021a"},
	}
	if problems := checkEntries(entries); len(problems) != 0 {
		t.Errorf("checkEntries() = %v, want none", problems)
	}
}

func TestCheckPDFFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "assets", "pdf", "good.pdf"), "x")
	writeFile(t, filepath.Join(root, "assets", "pdf", "other.pdf"), "x")
	writeFile(t, filepath.Join(root, "assets", "pdf", "broken.pdf"), "x")

	orig := inspectPDF
	t.Cleanup(func() { inspectPDF = orig })
	inspectPDF = func(path string) (*pdf.Info, error) {
		switch filepath.Base(path) {
		case "good.pdf":
			return &pdf.Info{Pages: 10, DOI: "10.1000/good"}, nil
		case "other.pdf":
			return &pdf.Info{Pages: 4, DOI: "10.1000/other"}, nil
		default:
			return nil, errors.New("malformed PDF")
		}
	}

	cfg := config.Default()
	entries := []publication.Entry{
		{Key: "good", PDF: "/assets/pdf/good.pdf", DOI: "doi:10.1000/GOOD"},
		{Key: "mismatch", PDF: "assets/pdf/other.pdf", DOI: "10.1000/good"},
		{Key: "broken", PDF: "assets/pdf/broken.pdf"},
		{Key: "missing", PDF: "assets/pdf/absent.pdf"},
		{Key: "remote", PDF: "https://example.org/paper.pdf"},
		{Key: "nopdf"},
	}

	kinds := problemKinds(checkPDFFiles(root, cfg, entries))

	want := map[string]string{
		"mismatch": ProblemPDFMismatch,
		"broken":   ProblemPDFBroken,
		"missing":  ProblemPDFMissing,
	}
	if len(kinds) != len(want) {
		t.Errorf("problems = %v, want keys %v", kinds, want)
	}
	for key, kind := range want {
		if got := kinds[key]; len(got) != 1 || got[0] != kind {
			t.Errorf("%s problems = %v, want [%s]", key, got, kind)
		}
	}
}

func TestCollectLinks(t *testing.T) {
	entries := []publication.Entry{
		{Key: "a", URL: "https://example.org/a", DOI: "10.1000/a"},
		{Key: "b", URL: "not a link"},
		{Key: "c"},
	}

	links := collectLinks(entries)
	want := []linkcheck.Link{
		{Key: "a", Field: "url", URL: "https://example.org/a"},
		{Key: "a", Field: "doi", URL: "https://doi.org/10.1000/a"},
	}
	if len(links) != len(want) {
		t.Fatalf("collectLinks() = %v, want %v", links, want)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("links[%d] = %+v, want %+v", i, links[i], want[i])
		}
	}
}

func TestLinkProblems(t *testing.T) {
	results := []linkcheck.Result{
		{Link: linkcheck.Link{Key: "a", Field: "url", URL: "https://ok"}, Status: linkcheck.StatusValid, StatusCode: 200},
		{Link: linkcheck.Link{Key: "b", Field: "url", URL: "https://gone"}, Status: linkcheck.StatusInvalid, StatusCode: 404},
		{Link: linkcheck.Link{Key: "c", Field: "doi", URL: "https://slow"}, Status: linkcheck.StatusTimeout, Error: "deadline"},
	}

	problems := linkProblems(results)
	if len(problems) != 2 {
		t.Fatalf("linkProblems() = %v, want 2", problems)
	}
	if problems[0].Key != "b" || problems[0].Detail != "url https://gone: invalid (404)" {
		t.Errorf("problems[0] = %+v", problems[0])
	}
	if problems[1].Key != "c" || problems[1].Detail != "doi https://slow: timeout (deadline)" {
		t.Errorf("problems[1] = %+v", problems[1])
	}
}

// cancellingChecker cancels its context after checking the first link, the
// way an interrupt arriving mid-run would.
type cancellingChecker struct {
	cancel context.CancelFunc
}

func (c cancellingChecker) CheckAll(ctx context.Context, links []linkcheck.Link) ([]linkcheck.Result, error) {
	results := []linkcheck.Result{{Link: links[0], Status: linkcheck.StatusInvalid, StatusCode: 404}}
	c.cancel()
	results = append(results, linkcheck.Result{Link: links[1], Status: linkcheck.StatusError, Error: "Head: " + context.Canceled.Error()})
	return results, ctx.Err()
}

func TestCheckLinksUntilCancelled_KeepsPartialResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	links := []linkcheck.Link{
		{Key: "a", Field: "url", URL: "https://gone"},
		{Key: "b", Field: "url", URL: "https://interrupted"},
		{Key: "c", Field: "url", URL: "https://never-checked"},
	}

	results, err := checkLinksUntilCancelled(ctx, cancellingChecker{cancel: cancel}, links)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(results) != 1 || results[0].Key != "a" {
		t.Fatalf("results = %+v, want only the completed check of a", results)
	}

	problems := linkProblems(results)
	if len(problems) != 1 || problems[0].Key != "a" {
		t.Errorf("linkProblems() = %+v, want the broken link of a", problems)
	}
}

func TestCheckLinksUntilCancelled_Completed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	checker := linkcheck.New(1000, time.Second, linkcheck.WithHTTPClient(srv.Client()))
	links := []linkcheck.Link{
		{Key: "a", Field: "url", URL: srv.URL + "/ok"},
		{Key: "b", Field: "url", URL: srv.URL + "/gone"},
	}

	results, err := checkLinksUntilCancelled(context.Background(), checker, links)
	if err != nil {
		t.Fatalf("checkLinksUntilCancelled() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v, want 2", results)
	}
	if problems := linkProblems(results); len(problems) != 1 || problems[0].Key != "b" {
		t.Errorf("linkProblems() = %+v, want b only", problems)
	}
}
