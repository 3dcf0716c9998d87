package main

import (
	"os"

	"github.com/matsen/bibsite/internal/clipboard"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var copyRaw bool

func init() {
	copyCmd.Flags().BoolVar(&copyRaw, "raw", false, "Copy the record exactly as it appears in the bibliography")
	rootCmd.AddCommand(copyCmd)
}

var copyCmd = &cobra.Command{
	Use:   "copy <key>",
	Short: "Copy the BibTeX citation for an entry to the clipboard",
	Long: `Copy the BibTeX citation for an entry to the clipboard.

The system clipboard is used when available. Otherwise the text is sent to
the terminal as an OSC 52 escape sequence, which works over SSH and inside
tmux. A failed copy is reported but is not an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runCopy,
}

func runCopy(cmd *cobra.Command, args []string) error {
	s := mustLoadSite()
	key := args[0]
	text := mustCitation(s, key, copyRaw)

	available := clipboard.IsAvailable()
	if !available {
		log.Debug().Msg("no system clipboard utility found")
	}
	res := clipboard.New(os.Stderr).Copy(text)

	if jsonOutput {
		outputJSON(copyResponse(key, res, available))
		return nil
	}

	switch res.Method {
	case clipboard.MethodSystem:
		outputHuman("Copied %s to clipboard\n", key)
	case clipboard.MethodOSC52:
		outputHuman("Sent %s to the terminal clipboard\n", key)
	default:
		outputHuman("Could not copy %s: %v\n", key, res.Err)
	}
	return nil
}

func copyResponse(key string, res clipboard.Result, systemAvailable bool) CopyResponse {
	resp := CopyResponse{Key: key, Method: res.Method, SystemClipboard: systemAvailable}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	return resp
}
