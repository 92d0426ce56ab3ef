package content

import (
	"errors"
	"testing"
)

func TestSplitFrontMatter(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		raw      string
		wantMeta string
		wantBody string
		wantErr  error
	}{
		{
			name:     "meta and body",
			raw:      "---\ntitle: Intro\n---\nHello.\n",
			wantMeta: "title: Intro",
			wantBody: "Hello.",
		},
		{
			name:     "crlf line endings",
			raw:      "---\r\ntitle: Intro\r\n---\r\nHello.\r\n",
			wantMeta: "title: Intro",
			wantBody: "Hello.",
		},
		{
			name:     "empty body",
			raw:      "---\ntitle: Intro\n---\n",
			wantMeta: "title: Intro",
			wantBody: "",
		},
		{
			name:    "no opening delimiter",
			raw:     "title: Intro\n---\n",
			wantErr: errMissingFrontMatter,
		},
		{
			name:    "unclosed block",
			raw:     "---\ntitle: Intro\n",
			wantErr: errUnclosedFrontMatter,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			meta, body, err := splitFrontMatter(tc.raw)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("split: %v", err)
			}
			if meta != tc.wantMeta {
				t.Fatalf("meta = %q, want %q", meta, tc.wantMeta)
			}
			if body != tc.wantBody {
				t.Fatalf("body = %q, want %q", body, tc.wantBody)
			}
		})
	}
}

func TestParseChapterManifestRequiresFields(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		doc       string
		wantField string
	}{
		{"missing title", "---\ndescription: d\nservice: s\norder: 1\n---\n", "title"},
		{"missing description", "---\ntitle: t\nservice: s\norder: 1\n---\n", "description"},
		{"missing service", "---\ntitle: t\ndescription: d\norder: 1\n---\n", "service"},
		{"zero order", "---\ntitle: t\ndescription: d\nservice: s\norder: 0\n---\n", "order"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseChapterManifest("svc/ch/chapter.md", []byte(tc.doc))
			var malformed *MalformedDocumentError
			if !errors.As(err, &malformed) {
				t.Fatalf("err = %v, want MalformedDocumentError", err)
			}
			if malformed.Field != tc.wantField {
				t.Fatalf("field = %q, want %q", malformed.Field, tc.wantField)
			}
		})
	}
}

func TestParseSectionKeepsBody(t *testing.T) {
	t.Parallel()

	doc := "---\ntitle: Formulas\norder: 2\n---\nSUM adds a range.\n\nAVERAGE divides.\n"
	section, err := parseSection("svc/ch/section-formulas.md", "section-formulas", []byte(doc))
	if err != nil {
		t.Fatalf("parse section: %v", err)
	}
	if section.Slug != "section-formulas" {
		t.Fatalf("slug = %q", section.Slug)
	}
	want := "SUM adds a range.\n\nAVERAGE divides."
	if section.Content != want {
		t.Fatalf("content = %q, want %q", section.Content, want)
	}
}

func TestParseSectionBadYAMLFails(t *testing.T) {
	t.Parallel()

	doc := "---\ntitle: [unterminated\norder: 1\n---\nbody\n"
	_, err := parseSection("svc/ch/section-x.md", "section-x", []byte(doc))
	var malformed *MalformedDocumentError
	if !errors.As(err, &malformed) {
		t.Fatalf("err = %v, want MalformedDocumentError", err)
	}
}
