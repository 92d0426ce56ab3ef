package maintenance

import (
	"context"

	"github.com/lessonhub/lessonhub/internal/services/catalog/storage"
	"github.com/lessonhub/lessonhub/internal/services/content"
)

// closableCourseStore extends CourseStore with a Close method for resource cleanup.
type closableCourseStore interface {
	storage.CourseStore
	Close() error
}

// contentReader is the slice of the content repository the linter needs.
type contentReader interface {
	Services(ctx context.Context) ([]string, error)
	ChaptersByService(ctx context.Context, service string) ([]content.ChapterListItem, error)
	Chapter(ctx context.Context, service, chapterSlug string) (content.Chapter, bool, error)
}
