// Package catalog parses catalog admin command flags and runs catalog
// operations against the course store.
package catalog

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"time"

	entrypoint "github.com/lessonhub/lessonhub/internal/platform/cmd"
	"github.com/lessonhub/lessonhub/internal/services/catalog/domain"
	"github.com/lessonhub/lessonhub/internal/services/catalog/service"
	"github.com/lessonhub/lessonhub/internal/services/catalog/storage"
	"github.com/lessonhub/lessonhub/internal/services/catalog/storage/sqlite"
)

// Config holds catalog admin command configuration.
type Config struct {
	DBPath  string        `env:"LESSONHUB_CATALOG_DB_PATH"`
	Timeout time.Duration `env:"LESSONHUB_CATALOG_TIMEOUT" envDefault:"30s"`

	Create      bool
	Revise      bool
	RenameFrom  string
	List        bool
	ListDisplay bool
	History     bool
	Lineage     string

	Slug  string
	Title string
	Order int
	Actor string
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "catalog.db")
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to catalog sqlite database (default: LESSONHUB_CATALOG_DB_PATH or data/catalog.db)")
	fs.BoolVar(&cfg.Create, "create", false, "create a course record (new slug starts a lineage, known slug appends the next version)")
	fs.BoolVar(&cfg.Revise, "revise", false, "append the next version for an existing slug")
	fs.StringVar(&cfg.RenameFrom, "rename-from", "", "rename the course currently at this slug; -slug is the new slug")
	fs.BoolVar(&cfg.List, "list", false, "list current courses by slug")
	fs.BoolVar(&cfg.ListDisplay, "list-display", false, "list current courses in display order")
	fs.BoolVar(&cfg.History, "history", false, "print the version history behind -slug")
	fs.StringVar(&cfg.Lineage, "lineage", "", "print all records for a lineage key")
	fs.StringVar(&cfg.Slug, "slug", "", "course slug")
	fs.StringVar(&cfg.Title, "title", "", "course title")
	fs.IntVar(&cfg.Order, "order", 1, "course display order")
	fs.StringVar(&cfg.Actor, "actor", "admin", "author recorded on the new version")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the catalog admin command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCatalog, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open catalog store: %w", err)
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				fmt.Fprintf(errOut, "Error: close catalog store: %v\n", closeErr)
			}
		}()
		return runWithStore(ctx, cfg, store, out)
	})
}

func runWithStore(ctx context.Context, cfg Config, store storage.CourseStore, out io.Writer) error {
	svc := service.New(store)

	modes := 0
	for _, enabled := range []bool{cfg.Create, cfg.Revise, cfg.RenameFrom != "", cfg.List, cfg.ListDisplay, cfg.History, cfg.Lineage != ""} {
		if enabled {
			modes++
		}
	}
	if modes != 1 {
		return errors.New("exactly one of -create, -revise, -rename-from, -list, -list-display, -history, -lineage is required")
	}

	switch {
	case cfg.Create:
		course, err := svc.Create(ctx, inputFromConfig(cfg))
		if err != nil {
			return err
		}
		printCourse(out, course)
	case cfg.Revise:
		course, err := svc.Revise(ctx, inputFromConfig(cfg))
		if err != nil {
			return err
		}
		printCourse(out, course)
	case cfg.RenameFrom != "":
		course, err := svc.Rename(ctx, cfg.RenameFrom, inputFromConfig(cfg))
		if err != nil {
			return err
		}
		printCourse(out, course)
	case cfg.List:
		courses, err := svc.ListCurrent(ctx)
		if err != nil {
			return err
		}
		printCourses(out, courses)
	case cfg.ListDisplay:
		courses, err := svc.ListForDisplay(ctx)
		if err != nil {
			return err
		}
		printCourses(out, courses)
	case cfg.History:
		if cfg.Slug == "" {
			return errors.New("-slug is required with -history")
		}
		history, ok, err := svc.History(ctx, cfg.Slug)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(out, "no course at slug %q\n", cfg.Slug)
			return nil
		}
		printCourses(out, history)
	case cfg.Lineage != "":
		lineage, err := svc.ListLineage(ctx, cfg.Lineage)
		if err != nil {
			return err
		}
		printCourses(out, lineage)
	}
	return nil
}

func inputFromConfig(cfg Config) domain.CourseInput {
	return domain.CourseInput{
		Slug:         cfg.Slug,
		Title:        cfg.Title,
		DisplayOrder: cfg.Order,
		CreatedBy:    cfg.Actor,
	}
}

func printCourse(out io.Writer, course domain.Course) {
	fmt.Fprintf(out, "%s v%d key=%s order=%d by=%s %q\n", course.Slug, course.Version, course.CourseKey, course.DisplayOrder, course.CreatedBy, course.Title)
}

func printCourses(out io.Writer, courses []domain.Course) {
	for _, course := range courses {
		printCourse(out, course)
	}
}
