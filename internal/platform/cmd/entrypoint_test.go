package cmd

import (
	"context"
	"flag"
	"testing"
)

type testConfig struct {
	ContentDir string `env:"CMD_TEST_CONTENT_DIR" envDefault:"content/lessons"`
	DBPath     string `env:"CMD_TEST_DB_PATH" envDefault:"data/catalog.db"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("CMD_TEST_CONTENT_DIR", "env-lessons")
	t.Setenv("CMD_TEST_DB_PATH", "env-catalog.db")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfgRef := testConfig{}
	if err := ParseConfig(&cfgRef); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfgRef.ContentDir, "content-dir", cfgRef.ContentDir, "content dir")
	fs.StringVar(&cfgRef.DBPath, "db-path", cfgRef.DBPath, "db path")

	if err := ParseArgs(fs, []string{"-content-dir", "flag-lessons"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfgRef.ContentDir != "flag-lessons" {
		t.Fatalf("expected flag value for content dir, got %q", cfgRef.ContentDir)
	}
	if cfgRef.DBPath != "env-catalog.db" {
		t.Fatalf("expected env default db path, got %q", cfgRef.DBPath)
	}
}

func TestParseConfigFromArgsReadsEnvAndFlags(t *testing.T) {
	t.Setenv("CMD_TEST_CONTENT_DIR", "configarg-lessons")

	cfgRef := testConfig{}
	fs := flag.NewFlagSet("configargs", flag.ContinueOnError)
	fs.StringVar(&cfgRef.ContentDir, "content-dir", "", "content dir")
	if err := ParseConfigFromArgs(&cfgRef, fs, []string{"-content-dir", "flag-lessons"}); err != nil {
		t.Fatalf("parse config and args: %v", err)
	}
	if cfgRef.ContentDir != "flag-lessons" {
		t.Fatalf("expected parsed flag content dir, got %q", cfgRef.ContentDir)
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceCatalog, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryRunsFunction(t *testing.T) {
	ran := false
	err := RunWithTelemetry(context.Background(), ServiceCatalog, func(context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("run with telemetry: %v", err)
	}
	if !ran {
		t.Fatal("expected run function to execute")
	}
}
