package main

import (
	"testing"

	"github.com/matsen/bibsite/internal/publication"
)

func TestFilterEntries(t *testing.T) {
	entries := []publication.Entry{
		{Key: "a", Type: "article", Year: "2023", Selected: true},
		{Key: "b", Type: "inproceedings", Year: "2023"},
		{Key: "c", Type: "Article", Year: "2021", Selected: true},
		{Key: "d", Type: "misc"},
	}

	tests := []struct {
		name   string
		filter listFilter
		want   []string
	}{
		{"no filter", listFilter{}, []string{"a", "b", "c", "d"}},
		{"selected", listFilter{Selected: true}, []string{"a", "c"}},
		{"year", listFilter{Year: 2023}, []string{"a", "b"}},
		{"type ignores case", listFilter{Type: "article"}, []string{"a", "c"}},
		{"limit", listFilter{Limit: 3}, []string{"a", "b", "c"}},
		{"combined", listFilter{Selected: true, Year: 2021}, []string{"c"}},
		{"no match", listFilter{Year: 1999}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterEntries(entries, tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("filterEntries() returned %d entries, want %d", len(got), len(tt.want))
			}
			for i, key := range tt.want {
				if got[i].Key != key {
					t.Errorf("got[%d].Key = %q, want %q", i, got[i].Key, key)
				}
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer title here", 10, "a longe..."},
		{"Über große Titel", 8, "Über ..."},
	}
	for _, tt := range tests {
		if got := truncateString(tt.s, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
		}
	}
}
