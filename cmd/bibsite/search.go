package main

import (
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/matsen/bibsite/internal/publication"
	"github.com/matsen/bibsite/internal/storage"
	"github.com/spf13/cobra"
)

var (
	searchField string
	searchLimit int
)

func init() {
	searchCmd.Flags().StringVar(&searchField, "field", "", "Restrict the match to one field: title or author")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", DefaultSearchLimit, "Maximum results")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search publications by keyword",
	Long: `Search publications by keyword.

Matches key, title, author, abstract and keywords through the index built
by 'bibsite rebuild'. Results are newest first.

Examples:
  bibsite search "phylogenetic inference"
  bibsite search --field author Matsen`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	s := mustLoadSite()
	query := strings.Join(args, " ")

	db := mustOpenIndex(s.Root)
	defer db.Close()

	var (
		results []publication.Entry
		err     error
	)
	switch searchField {
	case "":
		results, err = db.Search(query, searchLimit)
	case storage.FieldTitle, storage.FieldAuthor:
		results, err = db.SearchField(searchField, query, searchLimit)
	default:
		exitWithError(ExitError, "unknown field %q (valid: title, author)", searchField)
	}
	if err != nil {
		exitWithError(ExitError, "search failed: %v", err)
	}

	if jsonOutput {
		if results == nil {
			results = []publication.Entry{}
		}
		outputJSON(results)
		return nil
	}
	if len(results) == 0 {
		outputHuman("No results for %q\n", query)
		return nil
	}
	printSearchTable(results)
	return nil
}

func printSearchTable(results []publication.Entry) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Key", "Year", "Title", "Author"})
	for i, e := range results {
		t.AppendRow(table.Row{
			i + 1,
			e.Key,
			e.Year,
			truncateString(e.Title, TitleMaxLen),
			truncateString(e.Author, AuthorMaxLen),
		})
	}
	t.Render()
}
