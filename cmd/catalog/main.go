// Package main provides the catalog admin CLI.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	catalogcmd "github.com/lessonhub/lessonhub/internal/cmd/catalog"
)

func main() {
	cfg, err := catalogcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[CATALOG] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := catalogcmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("catalog: %v", err)
	}
}
