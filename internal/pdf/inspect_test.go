package pdf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindDOI(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", "Available at 10.1145/3132747.3132765 online", "10.1145/3132747.3132765"},
		{"trailing period", "doi: 10.1038/nature12373.", "10.1038/nature12373"},
		{"in parentheses", "(10.1000/xyz123)", "10.1000/xyz123"},
		{"first of several", "10.1234/first and 10.5678/second", "10.1234/first"},
		{"too short registrant", "10.12/abc", ""},
		{"none", "no identifier here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindDOI(tt.text); got != tt.want {
				t.Errorf("FindDOI(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsValidDOI(t *testing.T) {
	tests := []struct {
		doi  string
		want bool
	}{
		{"10.1234/abc", true},
		{"10.1234/", false},
		{"11.1234/abcdef", false},
		{"10.1/a", false},
	}
	for _, tt := range tests {
		if got := isValidDOI(tt.doi); got != tt.want {
			t.Errorf("isValidDOI(%q) = %v, want %v", tt.doi, got, tt.want)
		}
	}
}

func TestInspect_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Inspect(path); err == nil {
		t.Error("Inspect() should fail on a non-PDF file")
	}
}

func TestInspect_Missing(t *testing.T) {
	if _, err := Inspect(filepath.Join(t.TempDir(), "absent.pdf")); err == nil {
		t.Error("Inspect() should fail on a missing file")
	}
}
