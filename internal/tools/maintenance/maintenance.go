// Package maintenance implements the catalog maintenance command: version
// chain verification for the course store and a lint pass over the lesson
// document repository.
package maintenance

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/lessonhub/lessonhub/internal/services/catalog/domain"
	"github.com/lessonhub/lessonhub/internal/services/catalog/storage"
	"github.com/lessonhub/lessonhub/internal/services/catalog/storage/sqlite"
	"github.com/lessonhub/lessonhub/internal/services/content"
)

// Config holds maintenance command configuration.
type Config struct {
	DBPath       string
	ContentDir   string
	Timeout      time.Duration
	VerifyChains bool
	LintContent  bool
	WarningsCap  int
	JSONOutput   bool
}

type envConfig struct {
	DBPath     string        `env:"LESSONHUB_CATALOG_DB_PATH"`
	ContentDir string        `env:"LESSONHUB_CONTENT_DIR"`
	Timeout    time.Duration `env:"LESSONHUB_MAINTENANCE_TIMEOUT" envDefault:"10m"`
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := env.Parse(&envCfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := Config{
		DBPath:      envCfg.DBPath,
		ContentDir:  envCfg.ContentDir,
		Timeout:     envCfg.Timeout,
		WarningsCap: 25,
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "catalog.db")
	}
	if cfg.ContentDir == "" {
		cfg.ContentDir = filepath.Join("content", "lessons")
	}

	fs.BoolVar(&cfg.VerifyChains, "verify-chains", false, "verify that every lineage's versions form a contiguous 1..N chain")
	fs.BoolVar(&cfg.LintContent, "lint-content", false, "lint the lesson document repository for malformed documents")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to catalog sqlite database (default: LESSONHUB_CATALOG_DB_PATH or data/catalog.db)")
	fs.StringVar(&cfg.ContentDir, "content-dir", cfg.ContentDir, "path to lesson documents (default: LESSONHUB_CONTENT_DIR or content/lessons)")
	fs.IntVar(&cfg.WarningsCap, "warnings-cap", cfg.WarningsCap, "max warnings to print (0 = no limit)")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output JSON reports")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the maintenance command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if !cfg.VerifyChains && !cfg.LintContent {
		return errors.New("-verify-chains or -lint-content is required")
	}
	if cfg.WarningsCap < 0 {
		return errors.New("-warnings-cap must be >= 0")
	}

	var store closableCourseStore
	if cfg.VerifyChains {
		opened, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open catalog store: %w", err)
		}
		store = opened
	}
	var repo contentReader
	if cfg.LintContent {
		info, err := os.Stat(cfg.ContentDir)
		if err != nil {
			if store != nil {
				_ = store.Close()
			}
			return fmt.Errorf("content dir: %w", err)
		}
		if !info.IsDir() {
			if store != nil {
				_ = store.Close()
			}
			return fmt.Errorf("content dir %s is not a directory", cfg.ContentDir)
		}
		repo = content.NewRepository(os.DirFS(cfg.ContentDir))
	}

	return runWithDeps(ctx, cfg, store, repo, out, errOut)
}

// runWithDeps contains the maintenance logic with injectable dependencies.
// It owns the lifecycle of the store (closing it on return).
func runWithDeps(ctx context.Context, cfg Config, store closableCourseStore, repo contentReader, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	defer func() {
		if store == nil {
			return
		}
		if err := store.Close(); err != nil {
			fmt.Fprintf(errOut, "Error: close catalog store: %v\n", err)
		}
	}()

	failed := false
	if cfg.VerifyChains {
		result := runVerifyChains(ctx, store, cfg.WarningsCap)
		emitResult(out, errOut, result, cfg.JSONOutput)
		if result.ExitCode != 0 {
			failed = true
		}
	}
	if cfg.LintContent {
		result := runLintContent(ctx, repo, cfg.WarningsCap)
		emitResult(out, errOut, result, cfg.JSONOutput)
		if result.ExitCode != 0 {
			failed = true
		}
	}
	if failed {
		return errors.New("maintenance failed")
	}
	return nil
}

// ChainReport summarizes a version chain verification pass.
type ChainReport struct {
	Lineages   int `json:"lineages"`
	Records    int `json:"records"`
	Gaps       int `json:"gaps"`
	Duplicates int `json:"duplicates"`
}

// ContentReport summarizes a document repository lint pass.
type ContentReport struct {
	Services  int `json:"services"`
	Chapters  int `json:"chapters"`
	Sections  int `json:"sections"`
	Malformed int `json:"malformed"`
}

type runResult struct {
	Mode          string          `json:"mode"`
	Report        json.RawMessage `json:"report,omitempty"`
	Warnings      []string        `json:"warnings,omitempty"`
	WarningsTotal int             `json:"warnings_total,omitempty"`
	Error         string          `json:"error,omitempty"`
	ExitCode      int             `json:"-"`
}

func runVerifyChains(ctx context.Context, store closableCourseStore, warningsCap int) runResult {
	result := runResult{Mode: "verify-chains"}
	report, warnings, err := VerifyVersionChains(ctx, store)
	result.Warnings, result.WarningsTotal = capWarnings(warnings, warningsCap)
	if err != nil {
		result.Error = fmt.Sprintf("verify version chains: %v", err)
		result.ExitCode = 1
		return result
	}
	payload, err := json.Marshal(report)
	if err != nil {
		result.Error = fmt.Sprintf("encode report: %v", err)
		result.ExitCode = 1
		return result
	}
	result.Report = payload
	if report.Gaps > 0 || report.Duplicates > 0 {
		result.ExitCode = 1
	}
	return result
}

func runLintContent(ctx context.Context, repo contentReader, warningsCap int) runResult {
	result := runResult{Mode: "lint-content"}
	report, warnings, err := LintContent(ctx, repo)
	result.Warnings, result.WarningsTotal = capWarnings(warnings, warningsCap)
	if err != nil {
		result.Error = fmt.Sprintf("lint content: %v", err)
		result.ExitCode = 1
		return result
	}
	payload, err := json.Marshal(report)
	if err != nil {
		result.Error = fmt.Sprintf("encode report: %v", err)
		result.ExitCode = 1
		return result
	}
	result.Report = payload
	if report.Malformed > 0 {
		result.ExitCode = 1
	}
	return result
}

// VerifyVersionChains checks that each lineage's versions form a contiguous
// 1..N chain: no gaps, no duplicates. Warnings carry one line per problem.
func VerifyVersionChains(ctx context.Context, store storage.CourseStore) (ChainReport, []string, error) {
	report := ChainReport{}
	warnings := []string{}
	if store == nil {
		return report, warnings, fmt.Errorf("catalog store is not configured")
	}

	records, err := store.ListCourses(ctx)
	if err != nil {
		return report, warnings, fmt.Errorf("list courses: %w", err)
	}
	report.Records = len(records)

	lineages := make(map[string][]domain.Course)
	for _, record := range records {
		lineages[record.CourseKey] = append(lineages[record.CourseKey], record)
	}
	report.Lineages = len(lineages)

	keys := make([]string, 0, len(lineages))
	for key := range lineages {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		chain := lineages[key]
		highest := 0
		seen := make(map[int]int, len(chain))
		for _, record := range chain {
			seen[record.Version]++
			if record.Version > highest {
				highest = record.Version
			}
		}
		for version := 1; version <= highest; version++ {
			switch count := seen[version]; {
			case count == 0:
				report.Gaps++
				warnings = append(warnings, fmt.Sprintf("lineage %s: missing version %d (chain ends at %d)", key, version, highest))
			case count > 1:
				report.Duplicates++
				warnings = append(warnings, fmt.Sprintf("lineage %s: version %d appears %d times", key, version, count))
			}
		}
	}
	return report, warnings, nil
}

// LintContent walks every service's chapters and sections, counting
// documents and collecting malformed ones. A malformed document stops the
// walk of its chapter, not the whole lint.
func LintContent(ctx context.Context, repo contentReader) (ContentReport, []string, error) {
	report := ContentReport{}
	warnings := []string{}
	if repo == nil {
		return report, warnings, fmt.Errorf("content repository is not configured")
	}

	services, err := repo.Services(ctx)
	if err != nil {
		return report, warnings, fmt.Errorf("list services: %w", err)
	}
	report.Services = len(services)

	for _, service := range services {
		chapters, err := repo.ChaptersByService(ctx, service)
		if err != nil {
			var malformed *content.MalformedDocumentError
			if errors.As(err, &malformed) {
				report.Malformed++
				warnings = append(warnings, malformed.Error())
				continue
			}
			return report, warnings, fmt.Errorf("list chapters for %s: %w", service, err)
		}
		report.Chapters += len(chapters)

		for _, item := range chapters {
			chapter, ok, err := repo.Chapter(ctx, service, item.Slug)
			if err != nil {
				var malformed *content.MalformedDocumentError
				if errors.As(err, &malformed) {
					report.Malformed++
					warnings = append(warnings, malformed.Error())
					continue
				}
				return report, warnings, fmt.Errorf("read chapter %s/%s: %w", service, item.Slug, err)
			}
			if !ok {
				continue
			}
			report.Sections += len(chapter.Sections)
		}
	}
	return report, warnings, nil
}

func capWarnings(warnings []string, limit int) ([]string, int) {
	total := len(warnings)
	if limit == 0 || total <= limit {
		return warnings, total
	}
	return warnings[:limit], total
}

func emitResult(out io.Writer, errOut io.Writer, result runResult, jsonOutput bool) {
	if jsonOutput {
		encoded, err := json.Marshal(result)
		if err != nil {
			fmt.Fprintf(errOut, "Error: encode report: %v\n", err)
			return
		}
		fmt.Fprintln(out, string(encoded))
		return
	}
	printResult(out, errOut, result)
}

func printResult(out io.Writer, errOut io.Writer, result runResult) {
	if result.Error != "" {
		fmt.Fprintf(errOut, "Error: %s\n", result.Error)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(errOut, "Warning: %s\n", warning)
	}
	if result.WarningsTotal > len(result.Warnings) {
		fmt.Fprintf(errOut, "Warning: %d more warnings suppressed\n", result.WarningsTotal-len(result.Warnings))
	}
	if len(result.Report) == 0 {
		return
	}
	switch result.Mode {
	case "verify-chains":
		var report ChainReport
		if err := json.Unmarshal(result.Report, &report); err != nil {
			fmt.Fprintf(errOut, "Error: decode report: %v\n", err)
			return
		}
		fmt.Fprintf(out, "Verified %d lineages across %d records (%d gaps, %d duplicates)\n", report.Lineages, report.Records, report.Gaps, report.Duplicates)
	case "lint-content":
		var report ContentReport
		if err := json.Unmarshal(result.Report, &report); err != nil {
			fmt.Fprintf(errOut, "Error: decode report: %v\n", err)
			return
		}
		fmt.Fprintf(out, "Linted %d services, %d chapters, %d sections (%d malformed documents)\n", report.Services, report.Chapters, report.Sections, report.Malformed)
	}
}
