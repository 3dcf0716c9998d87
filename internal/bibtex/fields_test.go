package bibtex

import "testing"

func TestParseFields(t *testing.T) {
	body := `
  title = {\emph{Robust} Systems},
  author = "Doe, Jane and Roe, Richard",
  booktitle = {Proceedings of {OSDI}},
  year = 2023,
  abstract = {First line
    second line},
  acceptance_rate = {18%}
`
	fields := ParseFields(body)

	tests := []struct {
		name string
		want string
	}{
		{"title", `\emph{Robust} Systems`},
		{"author", "Doe, Jane and Roe, Richard"},
		{"booktitle", "Proceedings of {OSDI}"},
		{"year", "2023"},
		{"abstract", "First line\n    second line"},
		{"acceptance_rate", "18%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := fields.Get(tt.name)
			if !ok {
				t.Fatalf("field %q not found", tt.name)
			}
			if got != tt.want {
				t.Errorf("field %q = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestFieldsGet_Absent(t *testing.T) {
	fields := ParseFields(`title = {Only a title}`)
	if v, ok := fields.Get("pages"); ok {
		t.Errorf("Get(pages) = %q, true; want absent", v)
	}
}

func TestFieldsGet_CaseSensitive(t *testing.T) {
	fields := ParseFields(`Title = {Upper}`)
	if _, ok := fields.Get("title"); ok {
		t.Error("Get(title) matched Title")
	}
	if v, ok := fields.Get("Title"); !ok || v != "Upper" {
		t.Errorf("Get(Title) = %q, %v", v, ok)
	}
}

func TestFieldsGet_WholeNameOnly(t *testing.T) {
	fields := ParseFields(`booktitle = {Proceedings}, title = {Paper}`)
	if v, _ := fields.Get("title"); v != "Paper" {
		t.Errorf("Get(title) = %q, want Paper", v)
	}
}

func TestFieldsGet_FirstWins(t *testing.T) {
	fields := ParseFields(`year = {2020}, year = {2021}`)
	if v, _ := fields.Get("year"); v != "2020" {
		t.Errorf("Get(year) = %q, want 2020", v)
	}
}

func TestParseFields_TrimsValue(t *testing.T) {
	fields := ParseFields(`pages = {  10--20  }`)
	if v, _ := fields.Get("pages"); v != "10--20" {
		t.Errorf("Get(pages) = %q, want 10--20", v)
	}
}

func TestParseFields_QuotedWithBraces(t *testing.T) {
	fields := ParseFields(`title = "A {"}quoted{"} word", year = {1999}`)
	if v, _ := fields.Get("title"); v != `A {"}quoted{"} word` {
		t.Errorf("Get(title) = %q", v)
	}
	if v, _ := fields.Get("year"); v != "1999" {
		t.Errorf("Get(year) = %q, want 1999", v)
	}
}

func TestParseFields_SkipsJunk(t *testing.T) {
	fields := ParseFields(`!!! garbage, title = {Kept}, novalue, year = {2000}`)
	if v, _ := fields.Get("title"); v != "Kept" {
		t.Errorf("Get(title) = %q, want Kept", v)
	}
	if v, _ := fields.Get("year"); v != "2000" {
		t.Errorf("Get(year) = %q, want 2000", v)
	}
}

func TestParseFields_UnterminatedValue(t *testing.T) {
	fields := ParseFields(`year = {2000}, title = {never closed`)
	if _, ok := fields.Get("title"); ok {
		t.Error("unterminated title should be absent")
	}
	if v, _ := fields.Get("year"); v != "2000" {
		t.Errorf("Get(year) = %q, want 2000", v)
	}
}

func TestRecordField(t *testing.T) {
	rec := Record{Type: "misc", Key: "k", Body: ` selected = {true}`}
	if v, ok := rec.Field("selected"); !ok || v != "true" {
		t.Errorf("Field(selected) = %q, %v", v, ok)
	}
}
