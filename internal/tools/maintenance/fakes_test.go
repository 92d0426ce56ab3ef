package maintenance

import (
	"context"

	"github.com/lessonhub/lessonhub/internal/services/catalog/domain"
	"github.com/lessonhub/lessonhub/internal/services/catalog/storage"
)

// fakeCourseStore serves canned records and tracks Close calls.
type fakeCourseStore struct {
	records []domain.Course
	listErr error
	closed  bool
}

func (f *fakeCourseStore) AppendCourse(_ context.Context, course domain.Course) (domain.Course, error) {
	f.records = append(f.records, course)
	return course, nil
}

func (f *fakeCourseStore) ListCourses(context.Context) ([]domain.Course, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Course(nil), f.records...), nil
}

func (f *fakeCourseStore) ListCoursesBySlug(_ context.Context, slug string) ([]domain.Course, error) {
	var matched []domain.Course
	for _, record := range f.records {
		if record.Slug == slug {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

func (f *fakeCourseStore) ListCoursesByKey(_ context.Context, courseKey string) ([]domain.Course, error) {
	var matched []domain.Course
	for _, record := range f.records {
		if record.CourseKey == courseKey {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

func (f *fakeCourseStore) GetLatestCourseBySlug(_ context.Context, slug string) (domain.Course, error) {
	latest := domain.LatestBySlug(f.records)
	course, ok := latest[slug]
	if !ok {
		return domain.Course{}, storage.ErrNotFound
	}
	return course, nil
}

func (f *fakeCourseStore) Close() error {
	f.closed = true
	return nil
}

func chainRecord(slug string, version int, key string) domain.Course {
	return domain.Course{
		Slug:         slug,
		Title:        "Course " + slug,
		Version:      version,
		CourseKey:    key,
		DisplayOrder: 1,
		CreatedBy:    "user-1",
	}
}
