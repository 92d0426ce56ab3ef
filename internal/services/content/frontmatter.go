package content

import (
	"errors"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

var (
	errMissingFrontMatter  = errors.New("missing front matter block")
	errUnclosedFrontMatter = errors.New("front matter block is not closed")
	errFieldRequired       = errors.New("required field is missing")
	errOrderNotPositive    = errors.New("order must be greater than zero")
)

// splitFrontMatter separates a document into its YAML front matter and body.
// The document must open with a `---` line; the block runs until the next
// `---` line and the body is everything after it.
func splitFrontMatter(raw string) (meta string, body string, err error) {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(normalized, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontMatterDelimiter {
		return "", "", errMissingFrontMatter
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontMatterDelimiter {
			meta = strings.Join(lines[1:i], "\n")
			body = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
			return meta, body, nil
		}
	}
	return "", "", errUnclosedFrontMatter
}

// parseChapterManifest decodes and validates a chapter manifest document.
func parseChapterManifest(path string, raw []byte) (ChapterMetadata, error) {
	meta, _, err := splitFrontMatter(string(raw))
	if err != nil {
		return ChapterMetadata{}, &MalformedDocumentError{Path: path, Err: err}
	}

	var metadata ChapterMetadata
	if err := yaml.Unmarshal([]byte(meta), &metadata); err != nil {
		return ChapterMetadata{}, &MalformedDocumentError{Path: path, Err: err}
	}
	metadata.Title = strings.TrimSpace(metadata.Title)
	metadata.Description = strings.TrimSpace(metadata.Description)
	metadata.Service = strings.TrimSpace(metadata.Service)

	switch {
	case metadata.Title == "":
		return ChapterMetadata{}, &MalformedDocumentError{Path: path, Field: "title", Err: errFieldRequired}
	case metadata.Description == "":
		return ChapterMetadata{}, &MalformedDocumentError{Path: path, Field: "description", Err: errFieldRequired}
	case metadata.Service == "":
		return ChapterMetadata{}, &MalformedDocumentError{Path: path, Field: "service", Err: errFieldRequired}
	case metadata.Order < 1:
		return ChapterMetadata{}, &MalformedDocumentError{Path: path, Field: "order", Err: errOrderNotPositive}
	}
	return metadata, nil
}

type sectionMetadata struct {
	Title string `yaml:"title"`
	Order int    `yaml:"order"`
}

// parseSection decodes and validates a section document. The slug is the
// file name without its extension and is assigned by the caller.
func parseSection(path, slug string, raw []byte) (Section, error) {
	meta, body, err := splitFrontMatter(string(raw))
	if err != nil {
		return Section{}, &MalformedDocumentError{Path: path, Err: err}
	}

	var metadata sectionMetadata
	if err := yaml.Unmarshal([]byte(meta), &metadata); err != nil {
		return Section{}, &MalformedDocumentError{Path: path, Err: err}
	}
	metadata.Title = strings.TrimSpace(metadata.Title)

	switch {
	case metadata.Title == "":
		return Section{}, &MalformedDocumentError{Path: path, Field: "title", Err: errFieldRequired}
	case metadata.Order < 1:
		return Section{}, &MalformedDocumentError{Path: path, Field: "order", Err: errOrderNotPositive}
	}
	return Section{
		Slug:    slug,
		Title:   metadata.Title,
		Order:   metadata.Order,
		Content: body,
	}, nil
}
