// Package main starts the market HTTP service process lifecycle.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	marketcmd "github.com/vinitgirdhar/KhelWapas/internal/cmd/market"
	"github.com/vinitgirdhar/KhelWapas/internal/platform/config"
)

func main() {
	if err := config.LoadDotenv(); err != nil {
		log.Fatalf("load env: %v", err)
	}

	cfg, err := marketcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[MARKET] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := marketcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
