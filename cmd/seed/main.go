// Package main provides a CLI for seeding the local development database
// with demo marketplace data.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	seedcmd "github.com/vinitgirdhar/KhelWapas/internal/cmd/seed"
	"github.com/vinitgirdhar/KhelWapas/internal/platform/config"
)

func main() {
	if err := config.LoadDotenv(); err != nil {
		log.Fatalf("load env: %v", err)
	}

	cfg, err := seedcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[SEED] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seedcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}
}
