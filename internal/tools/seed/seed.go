// Package seed populates a catalog database with a demo course set.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/lessonhub/lessonhub/internal/services/catalog/domain"
	"github.com/lessonhub/lessonhub/internal/services/catalog/service"
	"github.com/lessonhub/lessonhub/internal/services/catalog/storage"
	"github.com/lessonhub/lessonhub/internal/services/catalog/storage/sqlite"
)

const seedActor = "seed"

// Config holds seed command configuration.
type Config struct {
	DBPath  string
	Verbose bool
}

type envConfig struct {
	DBPath string `env:"LESSONHUB_CATALOG_DB_PATH"`
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := env.Parse(&envCfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := Config{DBPath: envCfg.DBPath}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "catalog.db")
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to catalog sqlite database (default: LESSONHUB_CATALOG_DB_PATH or data/catalog.db)")
	fs.BoolVar(&cfg.Verbose, "v", false, "verbose output")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the seed command against the configured database.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open catalog store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			fmt.Fprintf(errOut, "Error: close catalog store: %v\n", closeErr)
		}
	}()

	return Seed(ctx, store, cfg.Verbose, out)
}

// Seed writes the demo catalog through the catalog service: three courses,
// two revisions of one of them, and a rename that forks a fresh lineage.
func Seed(ctx context.Context, store storage.CourseStore, verbose bool, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	svc := service.New(store)

	creates := []domain.CourseInput{
		{Slug: "spreadsheet", Title: "Spreadsheet Basics", DisplayOrder: 1, CreatedBy: seedActor},
		{Slug: "word", Title: "Word Processing", DisplayOrder: 2, CreatedBy: seedActor},
		{Slug: "presentation", Title: "Presentations", DisplayOrder: 3, CreatedBy: seedActor},
	}
	for _, input := range creates {
		course, err := svc.Create(ctx, input)
		if err != nil {
			return fmt.Errorf("create %s: %w", input.Slug, err)
		}
		if verbose {
			fmt.Fprintf(out, "created %s v%d (%s)\n", course.Slug, course.Version, course.CourseKey)
		}
	}

	revisions := []domain.CourseInput{
		{Slug: "spreadsheet", Title: "Spreadsheet Basics, Revised", DisplayOrder: 1, CreatedBy: seedActor},
		{Slug: "spreadsheet", Title: "Spreadsheet Fundamentals", DisplayOrder: 1, CreatedBy: seedActor},
	}
	for _, input := range revisions {
		course, err := svc.Revise(ctx, input)
		if err != nil {
			return fmt.Errorf("revise %s: %w", input.Slug, err)
		}
		if verbose {
			fmt.Fprintf(out, "revised %s to v%d\n", course.Slug, course.Version)
		}
	}

	renamed, err := svc.Rename(ctx, "presentation", domain.CourseInput{
		Slug:         "slides",
		Title:        "Slide Decks",
		DisplayOrder: 3,
		CreatedBy:    seedActor,
	})
	if err != nil {
		return fmt.Errorf("rename presentation: %w", err)
	}
	if verbose {
		fmt.Fprintf(out, "renamed presentation to %s v%d (%s)\n", renamed.Slug, renamed.Version, renamed.CourseKey)
	}

	current, err := svc.ListCurrent(ctx)
	if err != nil {
		return fmt.Errorf("list current: %w", err)
	}
	fmt.Fprintf(out, "Seeded %d current courses\n", len(current))
	for _, course := range current {
		fmt.Fprintf(out, "  %s v%d %q\n", course.Slug, course.Version, course.Title)
	}
	return nil
}
