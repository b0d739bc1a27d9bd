package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/bugskoyan/spotify/internal/app/albums"
	"github.com/bugskoyan/spotify/internal/app/artists"
	"github.com/bugskoyan/spotify/internal/app/filetypes"
	"github.com/bugskoyan/spotify/internal/app/songs"
	"github.com/bugskoyan/spotify/internal/auth"
	"github.com/bugskoyan/spotify/internal/config"
	"github.com/bugskoyan/spotify/internal/httpapi"
	"github.com/bugskoyan/spotify/internal/media"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web server",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "memory", Usage: "Use the in-memory store instead of Postgres"},
			&cli.BoolFlag{Name: "migrate", Usage: "Apply migrations before starting"},
			&cli.BoolFlag{Name: "seed", Usage: "Install default audio formats and demo albums"},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, func(c *config.Config) {
		if cmd.Bool("memory") {
			c.Database.Driver = config.DriverMemory
		}
	})
	if err != nil {
		return err
	}

	if cmd.Bool("migrate") {
		if err := runMigrations(cfg, true); err != nil {
			return err
		}
	}

	ds, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if cmd.Bool("seed") || cfg.Database.Driver == config.DriverMemory {
		if err := seedDemoData(ctx, ds); err != nil {
			return err
		}
	}

	handler, err := newHTTPHandler(cfg, ds)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("driver", cfg.Database.Driver).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server exited")
	return nil
}

func newHTTPHandler(cfg config.Config, ds dataStore) (http.Handler, error) {
	files, err := media.New(cfg.Media.Root, cfg.Media.URL)
	if err != nil {
		return nil, err
	}

	opts := httpapi.Options{
		Media:          files,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		AllowedOrigin:  cfg.CORS.AllowedOrigin,
	}
	if cfg.Session.Secret != "" {
		tokens, err := auth.NewTokenManager(cfg.Session.Secret)
		if err != nil {
			return nil, err
		}
		opts.Tokens = tokens
	} else {
		log.Warn().Msg("SESSION_SECRET not set; sessions and the admin API are disabled")
	}

	server, err := httpapi.New(
		albums.New(ds, files),
		songs.New(ds, files),
		artists.New(ds),
		filetypes.New(ds),
		opts,
	)
	if err != nil {
		return nil, err
	}
	return server.Routes(), nil
}
