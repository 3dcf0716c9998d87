package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/matsen/bibsite/internal/config"
	"github.com/matsen/bibsite/internal/publication"
	"github.com/matsen/bibsite/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the search index from the publication data file",
	Long: `Rebuild the SQLite search index from the publication data file.

Run this after 'bibsite build'. The index lives under .bibsite/cache and
can be deleted at any time.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

func runRebuild(cmd *cobra.Command, args []string) error {
	s := mustLoadSite()

	docPath := s.Config.OutputPath(s.Root)
	entries, err := storage.ReadAll(docPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			exitWithError(ExitDataError, "%s not found\n\nRun 'bibsite build' first.", s.display(docPath))
		}
		exitWithError(ExitDataError, "reading publications: %v", err)
	}

	dbPath := config.DBPath(s.Root)
	count, err := rebuildIndex(dbPath, entries)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if jsonOutput {
		outputJSON(RebuildResponse{Status: "rebuilt", Indexed: count, Path: s.display(dbPath)})
		return nil
	}
	outputHuman("Indexed %d publications\n", count)
	return nil
}

// rebuildIndex replaces the index at dbPath with entries and returns the
// number of rows the index holds afterwards.
func rebuildIndex(dbPath string, entries []publication.Entry) (int, error) {
	db, err := storage.OpenDB(dbPath)
	if err != nil {
		return 0, fmt.Errorf("opening index: %w", err)
	}
	defer db.Close()

	if _, err := db.Rebuild(entries); err != nil {
		return 0, fmt.Errorf("rebuilding index: %w", err)
	}

	count, err := db.Count()
	if err != nil {
		return 0, fmt.Errorf("counting index: %w", err)
	}
	return count, nil
}
