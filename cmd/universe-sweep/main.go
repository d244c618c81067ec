// Package main sweeps many seeds in parallel and reports aggregate behaviour.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	sweepcmd "emergence/internal/cmd/sweep"
)

func main() {
	cfg, err := sweepcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[SWEEP] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sweepcmd.Run(ctx, cfg, os.Stdout, log.Default()); err != nil {
		log.Fatalf("sweep: %v", err)
	}
}
