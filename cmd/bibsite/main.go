// Package main provides the bibsite CLI entry point.
package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matsen/bibsite/internal/config"
	"github.com/matsen/bibsite/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// jsonOutput switches command output to JSON
	jsonOutput bool
	verbose    bool
	rootFlag   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibsite",
	Short: "Publication data tool for an academic website",
	Long: `bibsite turns the site's BibTeX bibliography into the publication
data file rendered by the page templates.

It reads _bibliography/publications.bib, strips LaTeX markup from the
display fields, orders entries newest first and writes
_data/publications.json. Other commands show and copy citations, list
and search entries, and check links and linked PDFs.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Site root (default: nearest directory with .bibsite.yml or _config.yml)")
	rootCmd.Version = Version
}

func setupLogging(cmd *cobra.Command, args []string) error {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return nil
}

// site is the resolved site root and its configuration.
type site struct {
	Root   string
	Config *config.Config
}

// getStartingDirectory returns where to start looking for the site root.
func getStartingDirectory() (string, int) {
	if rootFlag != "" {
		return rootFlag, 0
	}
	if root := os.Getenv(config.EnvRoot); root != "" {
		return root, 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustLoadSite resolves the site root and loads its configuration, exits on error.
func mustLoadSite() *site {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	root, err := config.FindSiteRoot(start)
	if err != nil {
		exitWithError(ExitConfigError, "finding site root: %v", err)
	}

	if err := config.LoadEnvFile(root); err != nil {
		log.Warn().Err(err).Msg("ignoring .env file")
	}

	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	log.Debug().Str("root", root).Str("bibliography", cfg.Bibliography).Str("output", cfg.Output).Msg("site loaded")
	return &site{Root: root, Config: cfg}
}

// mustOpenIndex opens the query index, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenIndex(root string) *storage.DB {
	db, err := storage.OpenIndex(config.DBPath(root))
	if err != nil {
		if errors.Is(err, storage.ErrIndexMissing) {
			exitWithError(ExitIndexMissing, "search index not found\n\nRun 'bibsite rebuild' to create it.")
		}
		exitWithError(ExitError, "opening index: %v", err)
	}
	return db
}

// bibliographyPath returns the source path, honouring an explicit override.
func (s *site) bibliographyPath(override string) string {
	if override != "" {
		return absPath(override)
	}
	return s.Config.BibliographyPath(s.Root)
}

// outputPath returns the document path, honouring an explicit override.
func (s *site) outputPath(override string) string {
	if override != "" {
		return absPath(override)
	}
	return s.Config.OutputPath(s.Root)
}

// outputFormat picks the document format for path.
func (s *site) outputFormat(override, path string) string {
	switch {
	case override != "":
		return override
	case s.Config.Format != "":
		return s.Config.Format
	default:
		return storage.FormatForPath(path)
	}
}

// display shortens a path to be relative to the site root when possible.
func (s *site) display(path string) string {
	rel, err := filepath.Rel(s.Root, path)
	if err != nil || filepath.IsAbs(rel) || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func absPath(p string) string {
	p = config.ExpandPath(p)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
