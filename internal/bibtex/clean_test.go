package bibtex

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`\emph{Robust} Systems`, "Robust Systems"},
		{"New--Approach", "New–Approach"},
		{`Proceedings of {OSDI}`, "Proceedings of OSDI"},
		{`\LaTeX\ is nice`, `\ is nice`},
		{`G\"{o}del`, `G\"odel`},
		{"pages 1--12", "pages 1–12"},
		{"  spread\n   over\tlines  ", "spread over lines"},
		{`\textbf{Bold} and \textit{italic}`, "Bold and italic"},
		{`{{Double}}`, "{Double}"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Clean(tt.input)
			if got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClean_IdempotentWithoutMarkup(t *testing.T) {
	inputs := []string{
		"A plain title",
		"  Leading and trailing  ",
		"Multi\nline\n\nabstract with  gaps",
		"Already – dashed",
		"Doe, Jane and Roe, Richard",
	}

	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestClean_OrderMatters(t *testing.T) {
	// The command-with-argument rule runs before brace removal, so the
	// command name is dropped along with its braces.
	got := Clean(`\url{http://x--y}`)
	if got != "http://x–y" {
		t.Errorf("Clean() = %q, want %q", got, "http://x–y")
	}
}
