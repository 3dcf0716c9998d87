// Package storage writes the emitted publication document and keeps an
// ephemeral SQLite index of it for queries.
package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matsen/bibsite/internal/publication"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// Output formats for the publication document.
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// FormatForPath picks the document format implied by a file extension.
func FormatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return FormatJSONL
	}
	return FormatJSON
}

// EncodeJSON renders entries as a two-space indented JSON array. HTML
// characters are left unescaped so titles and URLs stay readable in diffs.
func EncodeJSON(entries []publication.Entry) ([]byte, error) {
	if entries == nil {
		entries = []publication.Entry{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, fmt.Errorf("encoding entries: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJSONL renders entries one per line.
func EncodeJSONL(entries []publication.Entry) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i, e := range entries {
		if err := enc.Encode(e); err != nil {
			return nil, fmt.Errorf("encoding entry %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// WriteJSON replaces the file at path with the JSON array document.
func WriteJSON(path string, entries []publication.Entry) error {
	data, err := EncodeJSON(entries)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// WriteJSONL replaces the file at path with one JSON entry per line.
func WriteJSONL(path string, entries []publication.Entry) error {
	data, err := EncodeJSONL(entries)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// Write replaces the file at path using the given format.
func Write(path, format string, entries []publication.Entry) error {
	switch format {
	case FormatJSON:
		return WriteJSON(path, entries)
	case FormatJSONL:
		return WriteJSONL(path, entries)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// writeAtomic writes data to a temp file next to path and renames it into
// place, so readers see either the old document or the new one.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	// CreateTemp uses 0600; published data files are world-readable
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

// ReadAll reads a publication document in either format, chosen by the
// file extension.
func ReadAll(path string) ([]publication.Entry, error) {
	if FormatForPath(path) == FormatJSONL {
		return readJSONL(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	var entries []publication.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return entries, nil
}

func readJSONL(path string) ([]publication.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	var entries []publication.Entry
	scanner := bufio.NewScanner(f)

	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var e publication.Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		entries = append(entries, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	return entries, nil
}
