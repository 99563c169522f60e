package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/riftcore/riftcore/internal/config"
	"github.com/riftcore/riftcore/internal/core/collision"
	"github.com/riftcore/riftcore/internal/core/game"
	"github.com/riftcore/riftcore/internal/core/geom"
	"github.com/riftcore/riftcore/internal/core/model"
	"github.com/riftcore/riftcore/internal/core/vision"
	"github.com/riftcore/riftcore/internal/server"
)

func main() {
	cfgPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Default()
	if *cfgPath != "" {
		cfg, err = config.LoadFile(*cfgPath)
		if err != nil {
			logger.Fatal("invalid configuration", zap.Error(err))
		}
	}

	zones, err := vision.GenerateZones(cfg.Vision.MapSeed, cfg.Vision.Zones)
	if err != nil {
		logger.Fatal("invalid zone layout", zap.Error(err))
	}

	world := game.NewWorld(logger, collision.NewResolver(cfg.Collision), vision.NewEngine(zones))
	setupArena(world)

	feed := server.New(logger, cfg.Server, world)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stopCh
		cancel()
	}()

	logger.Info("instance starting",
		zap.Int("tick_rate", cfg.Instance.TickRate),
		zap.String("map_seed", cfg.Vision.MapSeed))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return feed.Run(ctx) })
	g.Go(func() error { return runTicks(ctx, world, cfg.TickInterval(), cfg.TickDT()) })

	if err := g.Wait(); err != nil {
		logger.Error("instance stopped", zap.Error(err))
		return
	}
	logger.Info("instance stopped")
}

// runTicks drives the fixed-step simulation until ctx is cancelled. A tick
// that is already running always completes; cancellation is only observed at
// the tick boundary.
func runTicks(ctx context.Context, w *game.World, interval time.Duration, dt float64) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Step(dt)
		}
	}
}

// setupArena places the static map: one base structure per side, a mid camp
// and a lane wave spawner. Real deployments replace this with a map loader.
func setupArena(w *game.World) {
	w.Place(game.NewStructure(model.SideBlue, geom.Vec2{X: 400, Y: 400}, 80, 1100, 5000))
	w.Place(game.NewStructure(model.SideRed, geom.Vec2{X: 5600, Y: 5600}, 80, 1100, 5000))

	origins := [2]geom.Vec2{{X: 600, Y: 600}, {X: 5400, Y: 5400}}
	targets := [2]geom.Vec2{{X: 5400, Y: 5400}, {X: 600, Y: 600}}
	w.AddSpawner(game.NewWaveSpawner(30, 6, origins, targets))
	w.AddSpawner(game.NewCampSpawner(geom.Vec2{X: 3000, Y: 3000}, 60))
}
