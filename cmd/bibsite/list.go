package main

import (
	"os"
	"strings"

	"github.com/matsen/bibsite/internal/publication"
	"github.com/spf13/cobra"
)

var (
	listSelected bool
	listYear     int
	listType     string
	listLimit    int
)

func init() {
	listCmd.Flags().BoolVar(&listSelected, "selected", false, "Only entries marked selected")
	listCmd.Flags().IntVar(&listYear, "year", 0, "Only entries from this year")
	listCmd.Flags().StringVar(&listType, "type", "", "Only entries of this type (e.g. article, inproceedings)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Maximum entries to show (0 for all)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List bibliography entries, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// listFilter selects entries for the list command.
type listFilter struct {
	Selected bool
	Year     int
	Type     string
	Limit    int
}

func runList(cmd *cobra.Command, args []string) error {
	s := mustLoadSite()

	path := s.Config.BibliographyPath(s.Root)
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			exitWithError(ExitError, "%s not found", s.display(path))
		}
		exitWithError(ExitError, "reading bibliography: %v", err)
	}

	entries := filterEntries(publication.FromSource(string(src)), listFilter{
		Selected: listSelected,
		Year:     listYear,
		Type:     listType,
		Limit:    listLimit,
	})

	if jsonOutput {
		outputJSON(entries)
		return nil
	}
	if len(entries) == 0 {
		outputHuman("No entries found\n")
		return nil
	}
	printEntryTable(entries)
	return nil
}

// filterEntries keeps the entries matching f, preserving order.
func filterEntries(entries []publication.Entry, f listFilter) []publication.Entry {
	out := make([]publication.Entry, 0, len(entries))
	for _, e := range entries {
		if f.Selected && !e.Selected {
			continue
		}
		if f.Year != 0 && e.YearValue() != f.Year {
			continue
		}
		if f.Type != "" && !strings.EqualFold(e.Type, f.Type) {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}
