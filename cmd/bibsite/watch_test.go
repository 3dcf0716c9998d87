package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestShouldRebuild(t *testing.T) {
	target := "/site/_bibliography/publications.bib"

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write", fsnotify.Event{Name: target, Op: fsnotify.Write}, true},
		{"create after rename-save", fsnotify.Event{Name: target, Op: fsnotify.Create}, true},
		{"rename", fsnotify.Event{Name: target, Op: fsnotify.Rename}, true},
		{"chmod only", fsnotify.Event{Name: target, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: target, Op: fsnotify.Remove}, false},
		{"other file", fsnotify.Event{Name: "/site/_bibliography/other.bib", Op: fsnotify.Write}, false},
		{"editor swap file", fsnotify.Event{Name: target + ".swp", Op: fsnotify.Write}, false},
		{"unclean path", fsnotify.Event{Name: "/site/_bibliography/./publications.bib", Op: fsnotify.Write}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldRebuild(tt.ev, target); got != tt.want {
				t.Errorf("shouldRebuild(%v) = %v, want %v", tt.ev, got, tt.want)
			}
		})
	}
}

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "publications.bib")
	writeFile(t, target, "@misc{a, title={A}}\n")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, target, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(target, []byte("@misc{b, title={B}}\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case <-changed:
	case <-ctx.Done():
		t.Fatal("onChange was not called after a write")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watchFile() error = %v", err)
	}
}

func TestWatchFile_MissingDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "absent", "publications.bib")
	if err := watchFile(context.Background(), target, func() {}); err == nil {
		t.Error("watchFile() should fail when the directory does not exist")
	}
}
