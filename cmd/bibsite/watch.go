package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

var (
	watchInput  string
	watchOutput string
	watchFormat string
)

func init() {
	watchCmd.Flags().StringVarP(&watchInput, "input", "i", "", "BibTeX source (default from config)")
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "Publication document to write (default from config)")
	watchCmd.Flags().StringVar(&watchFormat, "format", "", "Output format: json or jsonl (default from config or extension)")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the publication data file whenever the bibliography changes",
	Long: `Build once, then rebuild whenever the bibliography is saved.

The bibliography's directory is watched so that editors which save by
writing a new file and renaming it over the old one are picked up. Stop
with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	s := mustLoadSite()

	in := s.bibliographyPath(watchInput)
	out := s.outputPath(watchOutput)
	format := s.outputFormat(watchFormat, out)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rebuild := func() {
		count, err := buildDocument(in, out, format)
		if err != nil {
			log.Error().Err(err).Msg("build failed")
			return
		}
		reportBuild(s, in, out, format, count)
	}

	rebuild()
	if err := watchFile(ctx, in, rebuild); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return nil
}

// watchFile calls onChange after target is written, created or renamed into
// place, until ctx is done. Events arriving within watchDebounce of each
// other trigger a single call.
func watchFile(ctx context.Context, target string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(target)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}
	log.Info().Str("file", target).Msg("watching for changes")

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if shouldRebuild(ev, target) {
				log.Debug().Str("op", ev.Op.String()).Str("file", ev.Name).Msg("bibliography changed")
				pending = time.After(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watcher error")

		case <-pending:
			pending = nil
			onChange()
		}
	}
}

// shouldRebuild reports whether ev changes the contents of target.
func shouldRebuild(ev fsnotify.Event, target string) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(target) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
