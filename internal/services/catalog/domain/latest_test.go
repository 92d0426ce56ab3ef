package domain

import (
	"testing"
	"time"
)

func course(id int64, slug string, version int, key string) Course {
	return Course{
		ID:           id,
		Slug:         slug,
		Title:        slug,
		Version:      version,
		CourseKey:    key,
		DisplayOrder: 1,
		CreatedBy:    "user-1",
		CreatedAt:    time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute),
	}
}

func TestLatestBySlugPicksMaxVersion(t *testing.T) {
	t.Parallel()

	records := []Course{
		course(1, "spreadsheet", 1, "key-a"),
		course(2, "spreadsheet", 2, "key-a"),
		course(3, "word", 1, "key-b"),
	}
	latest := LatestBySlug(records)
	if len(latest) != 2 {
		t.Fatalf("latest size = %d, want 2", len(latest))
	}
	if latest["spreadsheet"].Version != 2 {
		t.Fatalf("spreadsheet version = %d, want 2", latest["spreadsheet"].Version)
	}
	if latest["word"].Version != 1 {
		t.Fatalf("word version = %d, want 1", latest["word"].Version)
	}
}

// A rename forks a fresh lineage: the old slug keeps resolving to the old
// lineage's latest version while the new slug resolves to the fork's v1.
func TestLatestBySlugAfterRenameFork(t *testing.T) {
	t.Parallel()

	records := []Course{
		course(1, "spreadsheet", 1, "key-a"),
		course(2, "spreadsheet", 2, "key-a"),
		course(3, "spreadsheet-pro", 1, "key-b"),
	}
	latest := LatestBySlug(records)
	if got := latest["spreadsheet"]; got.Version != 2 || got.CourseKey != "key-a" {
		t.Fatalf("spreadsheet = v%d of %q, want v2 of key-a", got.Version, got.CourseKey)
	}
	if got := latest["spreadsheet-pro"]; got.Version != 1 || got.CourseKey != "key-b" {
		t.Fatalf("spreadsheet-pro = v%d of %q, want v1 of key-b", got.Version, got.CourseKey)
	}
}

func TestLatestBySlugTieBreaksOnCreatedAtThenID(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	older := Course{ID: 1, Slug: "word", Version: 3, CourseKey: "key-a", CreatedAt: base}
	newer := Course{ID: 2, Slug: "word", Version: 3, CourseKey: "key-b", CreatedAt: base.Add(time.Second)}
	latest := LatestBySlug([]Course{newer, older})
	if latest["word"].ID != 2 {
		t.Fatalf("latest id = %d, want 2 (most recent created_at)", latest["word"].ID)
	}

	sameTime := Course{ID: 9, Slug: "word", Version: 3, CourseKey: "key-c", CreatedAt: base}
	latest = LatestBySlug([]Course{older, sameTime})
	if latest["word"].ID != 9 {
		t.Fatalf("latest id = %d, want 9 (highest id)", latest["word"].ID)
	}
}

func TestCurrentCoursesSortsBySlug(t *testing.T) {
	t.Parallel()

	records := []Course{
		course(1, "word", 1, "key-b"),
		course(2, "spreadsheet", 1, "key-a"),
		course(3, "spreadsheet", 2, "key-a"),
	}
	courses := CurrentCourses(records)
	if len(courses) != 2 {
		t.Fatalf("current courses = %d, want 2", len(courses))
	}
	if courses[0].Slug != "spreadsheet" || courses[1].Slug != "word" {
		t.Fatalf("order = [%s %s], want [spreadsheet word]", courses[0].Slug, courses[1].Slug)
	}
	if courses[0].Version != 2 {
		t.Fatalf("spreadsheet version = %d, want 2", courses[0].Version)
	}
}

func TestDisplayCoursesSortsByOrderThenSlug(t *testing.T) {
	t.Parallel()

	a := course(1, "word", 1, "key-a")
	a.DisplayOrder = 2
	b := course(2, "spreadsheet", 1, "key-b")
	b.DisplayOrder = 1
	c := course(3, "email", 1, "key-c")
	c.DisplayOrder = 2

	courses := DisplayCourses([]Course{a, b, c})
	want := []string{"spreadsheet", "email", "word"}
	for i, slug := range want {
		if courses[i].Slug != slug {
			t.Fatalf("courses[%d].Slug = %q, want %q", i, courses[i].Slug, slug)
		}
	}
}

func TestCurrentCoursesEmptyInput(t *testing.T) {
	t.Parallel()

	if courses := CurrentCourses(nil); len(courses) != 0 {
		t.Fatalf("expected empty listing, got %d", len(courses))
	}
}
