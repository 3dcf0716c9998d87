package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/matsen/bibsite/internal/publication"
	"github.com/matsen/bibsite/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// errInputMissing is returned by buildDocument when the bibliography does not exist.
var errInputMissing = errors.New("bibliography not found")

var (
	buildInput  string
	buildOutput string
	buildFormat string
)

func init() {
	buildCmd.Flags().StringVarP(&buildInput, "input", "i", "", "BibTeX source (default from config)")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Publication document to write (default from config)")
	buildCmd.Flags().StringVar(&buildFormat, "format", "", "Output format: json or jsonl (default from config or extension)")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Convert the BibTeX bibliography to the publication data file",
	Long: `Convert the BibTeX bibliography to the publication data file.

Every entry in the bibliography becomes one record in the output, newest
year first. Titles, authors, venues, publisher and abstract have LaTeX
markup removed; other fields are copied verbatim. The output file is
replaced atomically and left untouched if the bibliography is missing.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	s := mustLoadSite()

	in := s.bibliographyPath(buildInput)
	out := s.outputPath(buildOutput)
	format := s.outputFormat(buildFormat, out)

	count, err := buildDocument(in, out, format)
	if err != nil {
		if errors.Is(err, errInputMissing) {
			exitWithError(ExitError, "%s not found", s.display(in))
		}
		exitWithError(ExitError, "%v", err)
	}

	reportBuild(s, in, out, format, count)
	return nil
}

// buildDocument converts the bibliography at in and writes it to out.
// It returns the number of entries written.
func buildDocument(in, out, format string) (int, error) {
	src, err := os.ReadFile(in)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", errInputMissing, in)
		}
		return 0, fmt.Errorf("reading bibliography: %w", err)
	}

	entries := publication.FromSource(string(src))
	if err := storage.Write(out, format, entries); err != nil {
		return 0, fmt.Errorf("writing %s: %w", out, err)
	}

	log.Debug().Str("input", in).Str("output", out).Int("count", len(entries)).Msg("publication document written")
	return len(entries), nil
}

func reportBuild(s *site, in, out, format string, count int) {
	if jsonOutput {
		outputJSON(BuildResponse{
			Status: "built",
			Count:  count,
			Input:  s.display(in),
			Output: s.display(out),
			Format: format,
		})
		return
	}
	outputHuman("Converted %d publications from %s to %s\n", count, s.display(in), s.display(out))
}
