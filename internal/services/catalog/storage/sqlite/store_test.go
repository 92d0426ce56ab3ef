package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lessonhub/lessonhub/internal/services/catalog/domain"
	"github.com/lessonhub/lessonhub/internal/services/catalog/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open catalog store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close catalog store: %v", err)
		}
	})
	return store
}

func testCourse(slug string, version int, key string) domain.Course {
	return domain.Course{
		Slug:         slug,
		Title:        "Course " + slug,
		Version:      version,
		CourseKey:    key,
		DisplayOrder: 1,
		CreatedBy:    "user-1",
		CreatedAt:    time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC),
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestAppendCourseAssignsID(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	stored, err := store.AppendCourse(context.Background(), testCourse("spreadsheet", 1, "key-a"))
	if err != nil {
		t.Fatalf("append course: %v", err)
	}
	if stored.ID == 0 {
		t.Fatal("expected store-assigned id")
	}
	if stored.Slug != "spreadsheet" || stored.Version != 1 {
		t.Fatalf("stored = %s v%d, want spreadsheet v1", stored.Slug, stored.Version)
	}
}

func TestAppendCourseRejectsVersionCollision(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.AppendCourse(context.Background(), testCourse("spreadsheet", 1, "key-a")); err != nil {
		t.Fatalf("append course: %v", err)
	}

	// Same lineage, same version: the integrity boundary for the version chain.
	_, err := store.AppendCourse(context.Background(), testCourse("spreadsheet-edited", 1, "key-a"))
	if !errors.Is(err, storage.ErrVersionConflict) {
		t.Fatalf("err = %v, want ErrVersionConflict", err)
	}
}

func TestAppendCourseAllowsSameVersionAcrossLineages(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.AppendCourse(context.Background(), testCourse("spreadsheet", 1, "key-a")); err != nil {
		t.Fatalf("append first lineage: %v", err)
	}
	if _, err := store.AppendCourse(context.Background(), testCourse("word", 1, "key-b")); err != nil {
		t.Fatalf("append second lineage: %v", err)
	}
}

func TestAppendCourseValidatesShape(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	cases := []struct {
		name   string
		mutate func(*domain.Course)
	}{
		{"empty slug", func(c *domain.Course) { c.Slug = " " }},
		{"empty key", func(c *domain.Course) { c.CourseKey = "" }},
		{"zero version", func(c *domain.Course) { c.Version = 0 }},
		{"zero display order", func(c *domain.Course) { c.DisplayOrder = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			course := testCourse("spreadsheet", 1, "key-a")
			tc.mutate(&course)
			if _, err := store.AppendCourse(context.Background(), course); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestGetLatestCourseBySlug(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	for version := 1; version <= 3; version++ {
		if _, err := store.AppendCourse(ctx, testCourse("spreadsheet", version, "key-a")); err != nil {
			t.Fatalf("append v%d: %v", version, err)
		}
	}

	latest, err := store.GetLatestCourseBySlug(ctx, "spreadsheet")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest.Version != 3 {
		t.Fatalf("latest version = %d, want 3", latest.Version)
	}
}

func TestGetLatestCourseBySlugNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.GetLatestCourseBySlug(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListCoursesOrdersBySlugThenVersion(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	appends := []domain.Course{
		testCourse("word", 1, "key-b"),
		testCourse("spreadsheet", 2, "key-a"),
		testCourse("spreadsheet", 1, "key-a"),
	}
	for _, course := range appends {
		if _, err := store.AppendCourse(ctx, course); err != nil {
			t.Fatalf("append %s v%d: %v", course.Slug, course.Version, err)
		}
	}

	courses, err := store.ListCourses(ctx)
	if err != nil {
		t.Fatalf("list courses: %v", err)
	}
	if len(courses) != 3 {
		t.Fatalf("courses = %d, want 3", len(courses))
	}
	wantOrder := []struct {
		slug    string
		version int
	}{
		{"spreadsheet", 1},
		{"spreadsheet", 2},
		{"word", 1},
	}
	for i, want := range wantOrder {
		if courses[i].Slug != want.slug || courses[i].Version != want.version {
			t.Fatalf("courses[%d] = %s v%d, want %s v%d", i, courses[i].Slug, courses[i].Version, want.slug, want.version)
		}
	}
}

func TestListCoursesEmptyStore(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	courses, err := store.ListCourses(context.Background())
	if err != nil {
		t.Fatalf("list courses: %v", err)
	}
	if len(courses) != 0 {
		t.Fatalf("courses = %d, want 0", len(courses))
	}
}

func TestListCoursesBySlugReturnsAllVersions(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	for version := 1; version <= 2; version++ {
		if _, err := store.AppendCourse(ctx, testCourse("spreadsheet", version, "key-a")); err != nil {
			t.Fatalf("append v%d: %v", version, err)
		}
	}
	if _, err := store.AppendCourse(ctx, testCourse("word", 1, "key-b")); err != nil {
		t.Fatalf("append word: %v", err)
	}

	courses, err := store.ListCoursesBySlug(ctx, "spreadsheet")
	if err != nil {
		t.Fatalf("list by slug: %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("courses = %d, want 2", len(courses))
	}
	if courses[0].Version != 1 || courses[1].Version != 2 {
		t.Fatalf("versions = [%d %d], want [1 2]", courses[0].Version, courses[1].Version)
	}
}

func TestListCoursesByKeyReturnsLineage(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if _, err := store.AppendCourse(ctx, testCourse("spreadsheet", 1, "key-a")); err != nil {
		t.Fatalf("append v1: %v", err)
	}
	// The store holds rows, not policy: a lineage may span slug values.
	renamed := testCourse("spreadsheet-pro", 2, "key-a")
	if _, err := store.AppendCourse(ctx, renamed); err != nil {
		t.Fatalf("append v2: %v", err)
	}
	if _, err := store.AppendCourse(ctx, testCourse("spreadsheet", 1, "key-b")); err != nil {
		t.Fatalf("append other lineage: %v", err)
	}

	lineage, err := store.ListCoursesByKey(ctx, "key-a")
	if err != nil {
		t.Fatalf("list by key: %v", err)
	}
	if len(lineage) != 2 {
		t.Fatalf("lineage = %d, want 2", len(lineage))
	}
	if lineage[0].Version != 1 || lineage[1].Version != 2 {
		t.Fatalf("versions = [%d %d], want [1 2]", lineage[0].Version, lineage[1].Version)
	}
}

func TestAppendCourseStoresMillisecondUTC(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	course := testCourse("spreadsheet", 1, "key-a")
	course.CreatedAt = time.Date(2026, time.March, 10, 9, 30, 0, 123456789, time.FixedZone("JST", 9*3600))
	stored, err := store.AppendCourse(context.Background(), course)
	if err != nil {
		t.Fatalf("append course: %v", err)
	}

	latest, err := store.GetLatestCourseBySlug(context.Background(), "spreadsheet")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if !latest.CreatedAt.Equal(stored.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", latest.CreatedAt, stored.CreatedAt)
	}
	if latest.CreatedAt.Location() != time.UTC {
		t.Fatalf("created_at location = %v, want UTC", latest.CreatedAt.Location())
	}
}
