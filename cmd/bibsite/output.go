package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/matsen/bibsite/internal/publication"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for search results

	TitleMaxLen  = 60 // Title column width in tables
	AuthorMaxLen = 40 // Author column width in tables
	VenueMaxLen  = 30 // Venue column width in tables
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// outputError writes an error message to stderr and returns the exit code.
func outputError(code int, format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if jsonOutput {
		outputJSON(ErrorResponse{Error: msg})
	} else {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// BuildResponse is the response for build and watch rebuilds.
type BuildResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
	Input  string `json:"input"`
	Output string `json:"output"`
	Format string `json:"format"`
}

// RebuildResponse is the response for the rebuild command.
type RebuildResponse struct {
	Status  string `json:"status"`
	Indexed int    `json:"indexed"`
	Path    string `json:"path"`
}

// CopyResponse is the response for the copy command.
type CopyResponse struct {
	Key             string `json:"key"`
	Method          string `json:"method"`
	SystemClipboard bool   `json:"system_clipboard"`
	Error           string `json:"error,omitempty"`
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// printEntryTable renders entries as a table on stdout.
func printEntryTable(entries []publication.Entry) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Key", "Year", "Type", "Title", "Venue", "Sel"})
	for _, e := range entries {
		sel := ""
		if e.Selected {
			sel = text.FgGreen.Sprint("*")
		}
		t.AppendRow(table.Row{
			e.Key,
			e.Year,
			e.Type,
			truncateString(e.Title, TitleMaxLen),
			truncateString(e.VenueName(), VenueMaxLen),
			sel,
		})
	}
	t.Render()
}
