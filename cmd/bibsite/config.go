package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/matsen/bibsite/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set values in .bibsite.yml.

Usage:
  bibsite config                        # Show effective config
  bibsite config output                 # Get specific value
  bibsite config output _data/pubs.json # Set value
  bibsite config init                   # Write a default .bibsite.yml

Keys:
  bibliography  BibTeX source, relative to the site root
  output        Publication data file, relative to the site root
  format        json or jsonl (empty follows the output extension)
  pdf-root      Base directory for relative pdf fields
  link-rate     Link checks per second
  link-timeout  Per-request link check timeout (e.g. 10s)`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .bibsite.yml at the site root",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// configKeys lists the settable keys in display order.
var configKeys = []string{"bibliography", "output", "format", "pdf-root", "link-rate", "link-timeout"}

func runConfig(cmd *cobra.Command, args []string) error {
	s := mustLoadSite()

	// No args: show all config
	if len(args) == 0 {
		if jsonOutput {
			outputJSON(configValues(s.Config))
			return nil
		}
		values := configValues(s.Config)
		for _, k := range configKeys {
			fmt.Printf("%-13s %s\n", k+":", values[k])
		}
		return nil
	}

	key := normalizeKey(args[0])

	// One arg: get specific value
	if len(args) == 1 {
		value, ok := configValues(s.Config)[key]
		if !ok {
			exitWithError(ExitError, "unknown configuration key: %s", args[0])
		}
		if jsonOutput {
			outputJSON(map[string]string{key: value})
		} else {
			fmt.Println(value)
		}
		return nil
	}

	// Two args: set value in the file, without environment overrides
	cfg, err := config.LoadFile(s.Root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := setConfigValue(cfg, key, args[1]); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(s.Root); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if jsonOutput {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: args[1]})
	} else {
		fmt.Printf("Updated %s to %s\n", key, args[1])
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	s := mustLoadSite()
	path := config.ConfigPath(s.Root)

	if _, err := os.Stat(path); err == nil {
		exitWithError(ExitConfigError, "%s already exists", s.display(path))
	}
	if err := config.Default().Save(s.Root); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if jsonOutput {
		outputJSON(StatusResponse{Status: "created", Path: s.display(path)})
	} else {
		outputHuman("Created %s\n", s.display(path))
	}
	return nil
}

func configValues(cfg *config.Config) map[string]string {
	return map[string]string{
		"bibliography": cfg.Bibliography,
		"output":       cfg.Output,
		"format":       cfg.Format,
		"pdf-root":     cfg.PDFRoot,
		"link-rate":    strconv.FormatFloat(cfg.LinkRate, 'g', -1, 64),
		"link-timeout": cfg.LinkTimeout.String(),
	}
}

func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "bibliography":
		cfg.Bibliography = value
	case "output":
		cfg.Output = value
	case "format":
		cfg.Format = value
	case "pdf-root":
		cfg.PDFRoot = value
	case "link-rate":
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid link-rate %q: %w", value, err)
		}
		cfg.LinkRate = rate
	case "link-timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid link-timeout %q: %w", value, err)
		}
		cfg.LinkTimeout = d
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// normalizeKey converts key formats (pdf-root, pdf_root, PDF_Root) to consistent format
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
