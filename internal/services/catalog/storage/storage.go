// Package storage defines persistence contracts for catalog course records.
package storage

import (
	"context"
	"errors"

	"github.com/lessonhub/lessonhub/internal/services/catalog/domain"
)

var (
	// ErrNotFound indicates a requested course record is missing.
	ErrNotFound = errors.New("course record not found")
	// ErrVersionConflict indicates an append collided with an existing
	// (course_key, version) pair. The caller may re-read the current version
	// and retry.
	ErrVersionConflict = errors.New("course version already exists")
)

// CourseStore persists append-only course records. There is no update or
// delete: every logical edit is a new append.
type CourseStore interface {
	// AppendCourse inserts one record and returns it with the store-assigned
	// ID set. It fails with ErrVersionConflict when the (course_key, version)
	// pair already exists.
	AppendCourse(ctx context.Context, course domain.Course) (domain.Course, error)
	// ListCourses returns every record, ordered by slug then version ascending.
	ListCourses(ctx context.Context) ([]domain.Course, error)
	// ListCoursesBySlug returns all records carrying a slug, version ascending.
	ListCoursesBySlug(ctx context.Context, slug string) ([]domain.Course, error)
	// ListCoursesByKey returns one lineage's records, version ascending.
	ListCoursesByKey(ctx context.Context, courseKey string) ([]domain.Course, error)
	// GetLatestCourseBySlug returns the highest-version record for a slug, or
	// ErrNotFound when the slug has no records.
	GetLatestCourseBySlug(ctx context.Context, slug string) (domain.Course, error)
}
