// Package sqlite provides a SQLite-backed catalog storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lessonhub/lessonhub/internal/platform/storage/sqlitemigrate"
	"github.com/lessonhub/lessonhub/internal/services/catalog/domain"
	"github.com/lessonhub/lessonhub/internal/services/catalog/storage"
	"github.com/lessonhub/lessonhub/internal/services/catalog/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists course records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite catalog store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendCourse inserts one course record and returns it with the assigned ID.
func (s *Store) AppendCourse(ctx context.Context, course domain.Course) (domain.Course, error) {
	if err := ctx.Err(); err != nil {
		return domain.Course{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Course{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(course.Slug) == "" {
		return domain.Course{}, fmt.Errorf("course slug is required")
	}
	if strings.TrimSpace(course.CourseKey) == "" {
		return domain.Course{}, fmt.Errorf("course key is required")
	}
	if course.Version < 1 {
		return domain.Course{}, fmt.Errorf("course version must be greater than zero")
	}
	if course.DisplayOrder < 1 {
		return domain.Course{}, fmt.Errorf("course display order must be greater than zero")
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}
	course.CreatedAt = course.CreatedAt.UTC().Truncate(time.Millisecond)

	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO courses (
		   slug,
		   title,
		   version,
		   course_key,
		   display_order,
		   created_by,
		   created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		course.Slug,
		course.Title,
		course.Version,
		course.CourseKey,
		course.DisplayOrder,
		course.CreatedBy,
		toMillis(course.CreatedAt),
	)
	if err != nil {
		if isCourseVersionConflict(err) {
			return domain.Course{}, storage.ErrVersionConflict
		}
		return domain.Course{}, fmt.Errorf("append course: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return domain.Course{}, fmt.Errorf("resolve course id: %w", err)
	}
	course.ID = id
	return course, nil
}

const courseColumns = "id, slug, title, version, course_key, display_order, created_by, created_at"

// ListCourses returns every course record ordered by slug then version.
func (s *Store) ListCourses(ctx context.Context) ([]domain.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+courseColumns+`
		   FROM courses
		  ORDER BY slug ASC, version ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	return scanCourses(rows, "list courses")
}

// ListCoursesBySlug returns all records carrying a slug, version ascending.
func (s *Store) ListCoursesBySlug(ctx context.Context, slug string) ([]domain.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("course slug is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+courseColumns+`
		   FROM courses
		  WHERE slug = ?
		  ORDER BY version ASC`,
		slug,
	)
	if err != nil {
		return nil, fmt.Errorf("list courses by slug: %w", err)
	}
	defer rows.Close()

	return scanCourses(rows, "list courses by slug")
}

// ListCoursesByKey returns one lineage's records, version ascending.
func (s *Store) ListCoursesByKey(ctx context.Context, courseKey string) ([]domain.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	courseKey = strings.TrimSpace(courseKey)
	if courseKey == "" {
		return nil, fmt.Errorf("course key is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+courseColumns+`
		   FROM courses
		  WHERE course_key = ?
		  ORDER BY version ASC`,
		courseKey,
	)
	if err != nil {
		return nil, fmt.Errorf("list courses by key: %w", err)
	}
	defer rows.Close()

	return scanCourses(rows, "list courses by key")
}

// GetLatestCourseBySlug returns the highest-version record for a slug.
func (s *Store) GetLatestCourseBySlug(ctx context.Context, slug string) (domain.Course, error) {
	if err := ctx.Err(); err != nil {
		return domain.Course{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Course{}, fmt.Errorf("storage is not configured")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return domain.Course{}, fmt.Errorf("course slug is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+courseColumns+`
		   FROM courses
		  WHERE slug = ?
		  ORDER BY version DESC, created_at DESC, id DESC
		  LIMIT 1`,
		slug,
	)

	course, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Course{}, storage.ErrNotFound
		}
		return domain.Course{}, fmt.Errorf("get latest course by slug: %w", err)
	}
	return course, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (domain.Course, error) {
	var course domain.Course
	var createdAt int64
	if err := row.Scan(
		&course.ID,
		&course.Slug,
		&course.Title,
		&course.Version,
		&course.CourseKey,
		&course.DisplayOrder,
		&course.CreatedBy,
		&createdAt,
	); err != nil {
		return domain.Course{}, err
	}
	course.CreatedAt = fromMillis(createdAt)
	return course, nil
}

func scanCourses(rows *sql.Rows, op string) ([]domain.Course, error) {
	courses := make([]domain.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return courses, nil
}

func isCourseVersionConflict(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "courses.course_key")
}

var _ storage.CourseStore = (*Store)(nil)
