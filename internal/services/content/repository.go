package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/lessonhub/lessonhub/internal/platform/ordering"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	manifestName  = "chapter.md"
	sectionPrefix = "section-"
	docExtension  = ".md"
)

// Repository reads the document tree for lesson content. Every call reads
// the filesystem fresh so edits to the documents show up without a restart.
//
// Layout: one directory per service, one directory per chapter holding a
// chapter.md manifest and section-*.md documents. Directories without a
// manifest are not chapters.
type Repository struct {
	fsys   fs.FS
	tracer trace.Tracer
}

// NewRepository creates a content repository over a document tree root.
func NewRepository(fsys fs.FS) *Repository {
	return &Repository{
		fsys:   fsys,
		tracer: otel.Tracer("lessonhub/content"),
	}
}

// Services lists the service directories at the repository root, ascending.
func (r *Repository) Services(ctx context.Context) ([]string, error) {
	_, span := r.tracer.Start(ctx, "content.Services")
	defer span.End()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(r.fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read content root: %w", err)
	}

	services := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			services = append(services, entry.Name())
		}
	}
	sort.Strings(services)
	return services, nil
}

// ChaptersByService lists a service's chapters in reading order. An unknown
// service, or one with no chapter directories, yields an empty list. Chapter
// directories whose manifest names a different service are left out.
func (r *Repository) ChaptersByService(ctx context.Context, service string) ([]ChapterListItem, error) {
	_, span := r.tracer.Start(ctx, "content.ChaptersByService")
	defer span.End()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(r.fsys, service)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []ChapterListItem{}, nil
		}
		return nil, fmt.Errorf("read service %s: %w", service, err)
	}

	chapters := make([]ChapterListItem, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		item, ok, err := r.chapterListItem(service, entry.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			chapters = append(chapters, item)
		}
	}
	sort.SliceStable(chapters, func(i, j int) bool {
		return ordering.Compare(chapters[i].Order, chapters[i].Slug, chapters[j].Order, chapters[j].Slug) < 0
	})
	return chapters, nil
}

// ChaptersByServiceGrouped lists every service's chapters, grouped per
// service with services sorted ascending.
func (r *Repository) ChaptersByServiceGrouped(ctx context.Context) ([]ServiceChapters, error) {
	ctx, span := r.tracer.Start(ctx, "content.ChaptersByServiceGrouped")
	defer span.End()

	services, err := r.Services(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make([]ServiceChapters, 0, len(services))
	for _, service := range services {
		chapters, err := r.ChaptersByService(ctx, service)
		if err != nil {
			return nil, err
		}
		grouped = append(grouped, ServiceChapters{Service: service, Chapters: chapters})
	}
	return grouped, nil
}

// Chapter resolves one chapter with its sections in reading order. A missing
// chapter directory, missing manifest, or a manifest naming a different
// service is an absent result, not an error.
func (r *Repository) Chapter(ctx context.Context, service, chapterSlug string) (Chapter, bool, error) {
	_, span := r.tracer.Start(ctx, "content.Chapter")
	defer span.End()
	if err := ctx.Err(); err != nil {
		return Chapter{}, false, err
	}

	metadata, ok, err := r.chapterManifest(service, chapterSlug)
	if err != nil || !ok {
		return Chapter{}, false, err
	}

	sections, err := r.chapterSections(service, chapterSlug)
	if err != nil {
		return Chapter{}, false, err
	}
	return Chapter{
		Slug:     chapterSlug,
		Metadata: metadata,
		Sections: sections,
	}, true, nil
}

// Section resolves one section document. The owning chapter must exist and
// belong to the service, otherwise the result is absent.
func (r *Repository) Section(ctx context.Context, service, chapterSlug, sectionSlug string) (Section, bool, error) {
	_, span := r.tracer.Start(ctx, "content.Section")
	defer span.End()
	if err := ctx.Err(); err != nil {
		return Section{}, false, err
	}

	if _, ok, err := r.chapterManifest(service, chapterSlug); err != nil || !ok {
		return Section{}, false, err
	}
	if !strings.HasPrefix(sectionSlug, sectionPrefix) {
		return Section{}, false, nil
	}

	docPath := path.Join(service, chapterSlug, sectionSlug+docExtension)
	raw, err := fs.ReadFile(r.fsys, docPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Section{}, false, nil
		}
		return Section{}, false, fmt.Errorf("read section %s: %w", docPath, err)
	}

	section, err := parseSection(docPath, sectionSlug, raw)
	if err != nil {
		return Section{}, false, err
	}
	return section, true, nil
}

// chapterManifest reads and validates a chapter's manifest. Absence of the
// directory or manifest, and a service mismatch, report ok == false.
func (r *Repository) chapterManifest(service, chapterSlug string) (ChapterMetadata, bool, error) {
	docPath := path.Join(service, chapterSlug, manifestName)
	raw, err := fs.ReadFile(r.fsys, docPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ChapterMetadata{}, false, nil
		}
		return ChapterMetadata{}, false, fmt.Errorf("read manifest %s: %w", docPath, err)
	}

	metadata, err := parseChapterManifest(docPath, raw)
	if err != nil {
		return ChapterMetadata{}, false, err
	}
	if metadata.Service != service {
		return ChapterMetadata{}, false, nil
	}
	return metadata, true, nil
}

// chapterSections reads every section document of a chapter, reading order.
func (r *Repository) chapterSections(service, chapterSlug string) ([]Section, error) {
	dirPath := path.Join(service, chapterSlug)
	entries, err := fs.ReadDir(r.fsys, dirPath)
	if err != nil {
		return nil, fmt.Errorf("read chapter %s: %w", dirPath, err)
	}

	sections := make([]Section, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, sectionPrefix) || !strings.HasSuffix(name, docExtension) {
			continue
		}
		docPath := path.Join(dirPath, name)
		raw, err := fs.ReadFile(r.fsys, docPath)
		if err != nil {
			return nil, fmt.Errorf("read section %s: %w", docPath, err)
		}
		section, err := parseSection(docPath, strings.TrimSuffix(name, docExtension), raw)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return ordering.Compare(sections[i].Order, sections[i].Slug, sections[j].Order, sections[j].Slug) < 0
	})
	return sections, nil
}

func (r *Repository) chapterListItem(service, chapterSlug string) (ChapterListItem, bool, error) {
	metadata, ok, err := r.chapterManifest(service, chapterSlug)
	if err != nil || !ok {
		return ChapterListItem{}, false, err
	}

	entries, err := fs.ReadDir(r.fsys, path.Join(service, chapterSlug))
	if err != nil {
		return ChapterListItem{}, false, fmt.Errorf("read chapter %s: %w", path.Join(service, chapterSlug), err)
	}
	count := 0
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, sectionPrefix) && strings.HasSuffix(name, docExtension) {
			count++
		}
	}
	return ChapterListItem{
		Slug:         chapterSlug,
		Title:        metadata.Title,
		Description:  metadata.Description,
		Order:        metadata.Order,
		SectionCount: count,
	}, true, nil
}
