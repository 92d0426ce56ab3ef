// Package service implements the catalog write and read operations on top of
// the append-only course store.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lessonhub/lessonhub/internal/platform/id"
	"github.com/lessonhub/lessonhub/internal/services/catalog/domain"
	"github.com/lessonhub/lessonhub/internal/services/catalog/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrRenameSameSlug reports a rename whose target slug equals the source.
	ErrRenameSameSlug = errors.New("rename requires a different slug")
)

// Service coordinates lineage and version assignment for course edits.
//
// The read-then-append sequence here is deliberately not atomic: two
// concurrent edits of one slug can both observe the same current version, and
// the store's (course_key, version) uniqueness constraint rejects the loser
// with storage.ErrVersionConflict. That conflict is returned to the caller
// verbatim as a retryable failure.
type Service struct {
	store  storage.CourseStore
	clock  func() time.Time
	newKey func() (string, error)
	tracer trace.Tracer
}

// New creates a catalog service with default dependencies.
func New(store storage.CourseStore) *Service {
	return &Service{
		store:  store,
		clock:  time.Now,
		newKey: id.NewID,
		tracer: otel.Tracer("lessonhub/catalog"),
	}
}

// Create appends a course record for input.Slug. A slug with no records
// starts a fresh lineage at version 1; a slug that already resolves to a
// record continues its lineage at version+1.
func (s *Service) Create(ctx context.Context, input domain.CourseInput) (domain.Course, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Create")
	defer span.End()

	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return domain.Course{}, err
	}

	latest, err := s.store.GetLatestCourseBySlug(ctx, input.Slug)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return s.appendFreshLineage(ctx, input)
	case err != nil:
		return domain.Course{}, fmt.Errorf("resolve current course: %w", err)
	default:
		return s.appendNextVersion(ctx, input, latest)
	}
}

// Revise appends the next version for an existing slug, carrying its course
// key forward. A slug with no records fails with storage.ErrNotFound.
func (s *Service) Revise(ctx context.Context, input domain.CourseInput) (domain.Course, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Revise")
	defer span.End()

	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return domain.Course{}, err
	}

	latest, err := s.store.GetLatestCourseBySlug(ctx, input.Slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Course{}, fmt.Errorf("revise %q: %w", input.Slug, err)
		}
		return domain.Course{}, fmt.Errorf("resolve current course: %w", err)
	}
	return s.appendNextVersion(ctx, input, latest)
}

// Rename forks the lineage currently reachable via fromSlug: the new slug
// starts a brand-new course key at version 1, and no link back to the old
// lineage is recorded. The fork is irreversible, which is why it is a
// separate operation instead of a Revise with a different slug.
func (s *Service) Rename(ctx context.Context, fromSlug string, input domain.CourseInput) (domain.Course, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Rename")
	defer span.End()

	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return domain.Course{}, err
	}
	if input.Slug == fromSlug {
		return domain.Course{}, ErrRenameSameSlug
	}

	if _, err := s.store.GetLatestCourseBySlug(ctx, fromSlug); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Course{}, fmt.Errorf("rename %q: %w", fromSlug, err)
		}
		return domain.Course{}, fmt.Errorf("resolve current course: %w", err)
	}
	return s.appendFreshLineage(ctx, input)
}

// ListCurrent returns the latest record per slug, sorted by slug ascending.
func (s *Service) ListCurrent(ctx context.Context) ([]domain.Course, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.ListCurrent")
	defer span.End()

	records, err := s.store.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return domain.CurrentCourses(records), nil
}

// ListForDisplay returns the latest record per slug in display rank order.
func (s *Service) ListForDisplay(ctx context.Context) ([]domain.Course, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.ListForDisplay")
	defer span.End()

	records, err := s.store.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return domain.DisplayCourses(records), nil
}

// Get returns the current record for a slug. A slug with no records is an
// absent result, not an error.
func (s *Service) Get(ctx context.Context, slug string) (domain.Course, bool, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Get")
	defer span.End()

	course, err := s.store.GetLatestCourseBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Course{}, false, nil
		}
		return domain.Course{}, false, fmt.Errorf("get course: %w", err)
	}
	return course, true, nil
}

// History returns the full version chain behind a slug's current record,
// version ascending. A slug with no records is an absent result.
func (s *Service) History(ctx context.Context, slug string) ([]domain.Course, bool, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.History")
	defer span.End()

	latest, err := s.store.GetLatestCourseBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get course: %w", err)
	}

	lineage, err := s.store.ListCoursesByKey(ctx, latest.CourseKey)
	if err != nil {
		return nil, false, fmt.Errorf("list lineage: %w", err)
	}
	return lineage, true, nil
}

// ListLineage returns one course key's records, version ascending.
func (s *Service) ListLineage(ctx context.Context, courseKey string) ([]domain.Course, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.ListLineage")
	defer span.End()

	lineage, err := s.store.ListCoursesByKey(ctx, courseKey)
	if err != nil {
		return nil, fmt.Errorf("list lineage: %w", err)
	}
	return lineage, nil
}

func (s *Service) appendFreshLineage(ctx context.Context, input domain.CourseInput) (domain.Course, error) {
	key, err := s.newKey()
	if err != nil {
		return domain.Course{}, fmt.Errorf("mint course key: %w", err)
	}
	return s.append(ctx, input, key, 1)
}

func (s *Service) appendNextVersion(ctx context.Context, input domain.CourseInput, latest domain.Course) (domain.Course, error) {
	return s.append(ctx, input, latest.CourseKey, latest.Version+1)
}

func (s *Service) append(ctx context.Context, input domain.CourseInput, courseKey string, version int) (domain.Course, error) {
	stored, err := s.store.AppendCourse(ctx, domain.Course{
		Slug:         input.Slug,
		Title:        input.Title,
		Version:      version,
		CourseKey:    courseKey,
		DisplayOrder: input.DisplayOrder,
		CreatedBy:    input.CreatedBy,
		CreatedAt:    s.clock().UTC(),
	})
	if err != nil {
		if errors.Is(err, storage.ErrVersionConflict) {
			// A concurrent edit won the race; the caller may retry.
			return domain.Course{}, err
		}
		return domain.Course{}, fmt.Errorf("append course: %w", err)
	}
	return stored, nil
}
