package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/fusion32/forgottenserver/internal/config"
	"github.com/fusion32/forgottenserver/internal/crypto"
	"github.com/fusion32/forgottenserver/internal/db"
	"github.com/fusion32/forgottenserver/internal/game"
	"github.com/fusion32/forgottenserver/internal/gateway"
)

const configPath = "config/gameserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	slog.Info("game server starting")

	cfgPath := configPath
	if p := os.Getenv("FS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadGateway(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	slog.Info("config loaded", "world", cfg.ServerName, "game_port", cfg.GamePort, "max_players", cfg.MaxPlayers)

	rsaKey, err := crypto.LoadRSAKey(cfg.RSAKeyFile)
	if err != nil {
		return fmt.Errorf("loading RSA key: %w", err)
	}
	slog.Info("RSA key loaded", "file", cfg.RSAKeyFile)

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	world := game.NewWorld(game.WorldTypePvP)
	exec := game.NewExecutor(0)

	ops := newGameOps(world)
	srv := gateway.NewServer(
		cfg,
		rsaKey,
		exec,
		world,
		ops,
		db.NewPostgresSessionStore(database.Pool()),
		db.NewPostgresBanStore(database.Pool()),
	)
	ops.attachGateway(srv)

	world.SetState(game.StateNormal)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting game executor")
		return exec.Run(gctx)
	})

	g.Go(func() error {
		slog.Info("starting game service")
		if err := srv.Run(gctx); err != nil {
			return fmt.Errorf("game service: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
