// Package main runs a universe headlessly and persists it to sqlite.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	runcmd "emergence/internal/cmd/run"
)

func main() {
	cfg, err := runcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[UNIVERSE] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runcmd.Run(ctx, cfg, os.Stdout, log.Default()); err != nil {
		log.Fatalf("run: %v", err)
	}
}
