// Package main provides the demo catalog seeder.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	entrypoint "github.com/lessonhub/lessonhub/internal/platform/cmd"
	"github.com/lessonhub/lessonhub/internal/platform/config"
	"github.com/lessonhub/lessonhub/internal/tools/seed"
)

func main() {
	cfg, err := seed.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSeed, func(ctx context.Context) error {
		return seed.Run(ctx, cfg, os.Stdout, os.Stderr)
	})
	if err != nil {
		config.Exitf("Error: %v", err)
	}
}
