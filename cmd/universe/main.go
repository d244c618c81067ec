//go:build ebiten

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"emergence/internal/app"
	"emergence/internal/audio"
	"emergence/internal/platform/config"
	"emergence/internal/sims/universe"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	ucfg := universe.DefaultConfig()
	ucfg.Seed = cfg.Seed
	if err := config.ParseEnv(&ucfg); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.Default()
	runner := universe.NewRunner(universe.New(ucfg, logger), universe.Hooks{})
	defer runner.Close()

	if cfg.Audio {
		player := audio.NewPlayer()
		if err := player.Initialize(); err != nil {
			logger.Printf("Audio initialization failed: %v", err)
		} else {
			defer player.Cleanup()
			runner.Subscribe(audio.NewCues[*universe.Universe](player, 0.4))
		}
	}

	game := app.New(ctx, runner, cfg, logger)
	if !cfg.Paused {
		runner.Start(ctx)
	}

	world := runner.Config()
	ebiten.SetWindowTitle("emergence")
	ebiten.SetWindowSize(int(world.Width*cfg.Scale)+cfg.HUDWidth, int(world.Height*cfg.Scale))
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
