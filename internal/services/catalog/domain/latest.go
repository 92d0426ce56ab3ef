package domain

import (
	"slices"
	"strings"

	"github.com/lessonhub/lessonhub/internal/platform/ordering"
)

// LatestBySlug projects the current record per slug: the highest version
// among records carrying that slug. Version ties cannot occur under the
// store's (course_key, version) constraint, but when fed unconstrained data
// the most recent CreatedAt wins, then the highest ID, so the projection
// stays deterministic.
func LatestBySlug(records []Course) map[string]Course {
	latest := make(map[string]Course, len(records))
	for _, record := range records {
		current, ok := latest[record.Slug]
		if !ok || supersedes(record, current) {
			latest[record.Slug] = record
		}
	}
	return latest
}

func supersedes(candidate, current Course) bool {
	if candidate.Version != current.Version {
		return candidate.Version > current.Version
	}
	if !candidate.CreatedAt.Equal(current.CreatedAt) {
		return candidate.CreatedAt.After(current.CreatedAt)
	}
	return candidate.ID > current.ID
}

// CurrentCourses flattens the latest view into a slice sorted by slug
// ascending, the canonical admin listing order.
func CurrentCourses(records []Course) []Course {
	latest := LatestBySlug(records)
	courses := make([]Course, 0, len(latest))
	for _, course := range latest {
		courses = append(courses, course)
	}
	slices.SortFunc(courses, func(a, b Course) int {
		return strings.Compare(a.Slug, b.Slug)
	})
	return courses
}

// DisplayCourses flattens the latest view into display rank order: ascending
// DisplayOrder with slug as the tie-break.
func DisplayCourses(records []Course) []Course {
	latest := LatestBySlug(records)
	courses := make([]Course, 0, len(latest))
	for _, course := range latest {
		courses = append(courses, course)
	}
	slices.SortStableFunc(courses, func(a, b Course) int {
		return ordering.Compare(a.DisplayOrder, a.Slug, b.DisplayOrder, b.Slug)
	})
	return courses
}
