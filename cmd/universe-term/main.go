// Package main renders a universe in the terminal.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"emergence/internal/audio"
	"emergence/internal/platform/config"
	"emergence/internal/sims/universe"
	"emergence/internal/term"
)

func main() {
	ucfg := universe.DefaultConfig()
	if err := config.ParseEnv(&ucfg); err != nil {
		log.Fatal(err)
	}
	var overrides config.KVList
	withAudio := flag.Bool("audio", false, "play audio cues for anomalies and inflations")
	paused := flag.Bool("paused", false, "start with the simulation stopped")
	logPath := flag.String("log", "", "append log output to this file (the terminal is busy)")
	flag.Int64Var(&ucfg.Seed, "seed", ucfg.Seed, "seed for the initial universe")
	flag.Var(&overrides, "set", "parameter override in key=value form (repeatable)")
	flag.Parse()
	universe.ApplyMap(&ucfg, overrides.Map())

	logger := log.New(io.Discard, "", log.LstdFlags)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatalf("open log: %v", err)
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := universe.NewRunner(universe.New(ucfg, logger), universe.Hooks{})

	if *withAudio {
		player := audio.NewPlayer()
		if err := player.Initialize(); err != nil {
			logger.Printf("Audio initialization failed: %v", err)
		} else {
			defer player.Cleanup()
			runner.Subscribe(audio.NewCues[*universe.Universe](player, 0.4))
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("init screen: %v", err)
	}
	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()

	session := term.NewSession(screen, runner, logger)
	if !*paused {
		runner.Start(ctx)
	}
	err = session.Run(ctx)
	screen.Fini()
	if err != nil && ctx.Err() == nil {
		config.Exitf("universe-term: %v", err)
	}
}
