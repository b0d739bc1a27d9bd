package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/bugskoyan/spotify/internal/app/albums"
	"github.com/bugskoyan/spotify/internal/app/artists"
	"github.com/bugskoyan/spotify/internal/app/filetypes"
	"github.com/bugskoyan/spotify/internal/app/songs"
	"github.com/bugskoyan/spotify/internal/config"
	"github.com/bugskoyan/spotify/internal/logging"
	"github.com/bugskoyan/spotify/internal/store"
	"github.com/bugskoyan/spotify/internal/store/memstore"
)

// dataStore is implemented by both the Postgres and the in-memory store.
type dataStore interface {
	albums.Store
	songs.Store
	artists.Store
	filetypes.Store
}

// openStore returns the configured store and a function releasing it.
func openStore(ctx context.Context, cfg config.Config) (dataStore, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		logging.Warn("using in-memory store; data is lost on exit")
		return memstore.New(), func() {}, nil
	}

	db, err := openDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	return store.New(db), func() { _ = db.Close() }, nil
}

// openDatabase establishes a database connection and retries until the instance responds.
func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	const (
		pingTimeout    = 5 * time.Second
		maxWait        = 30 * time.Second
		initialBackoff = 500 * time.Millisecond
		maxBackoff     = 5 * time.Second
	)

	deadline := time.Now().Add(maxWait)
	backoff := initialBackoff
	var lastErr error

	for {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = db.PingContext(pingCtx)
		cancel()

		if lastErr == nil {
			return db, nil
		}
		if ctx.Err() != nil || time.Now().After(deadline) {
			break
		}

		logging.WithContext(ctx).Warn().Err(lastErr).Dur("retry_in", backoff).Msg("database not ready")
		select {
		case <-ctx.Done():
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}

	_ = db.Close()
	return nil, fmt.Errorf("ping database: %w", lastErr)
}
