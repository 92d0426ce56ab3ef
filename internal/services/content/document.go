// Package content resolves the course/chapter/section tree from a document
// repository of markdown files with YAML front matter.
package content

import "fmt"

// ChapterMetadata is the front matter of a chapter manifest document.
type ChapterMetadata struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Service     string `yaml:"service"`
	Order       int    `yaml:"order"`
}

// Chapter is a fully resolved chapter: its manifest metadata plus all
// sections sorted in reading order.
type Chapter struct {
	Slug     string
	Metadata ChapterMetadata
	Sections []Section
}

// Section is one lesson document inside a chapter.
type Section struct {
	Slug    string
	Title   string
	Order   int
	Content string
}

// ChapterListItem is the listing view of a chapter: manifest fields plus the
// number of sections, without section bodies.
type ChapterListItem struct {
	Slug         string
	Title        string
	Description  string
	Order        int
	SectionCount int
}

// ServiceChapters groups one service's chapter listing.
type ServiceChapters struct {
	Service  string
	Chapters []ChapterListItem
}

// MalformedDocumentError reports a document that exists but cannot be used:
// broken front matter or a missing required field. Path locates the document
// inside the repository; Field names the offending front matter key when one
// can be singled out.
type MalformedDocumentError struct {
	Path  string
	Field string
	Err   error
}

func (e *MalformedDocumentError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed document %s: field %q: %v", e.Path, e.Field, e.Err)
	}
	return fmt.Sprintf("malformed document %s: %v", e.Path, e.Err)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}
