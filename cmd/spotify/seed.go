package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/bugskoyan/spotify/internal/app/filetypes"
	"github.com/bugskoyan/spotify/internal/store"
)

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Install the default audio formats and demo albums",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ds, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			return seedDemoData(ctx, ds)
		},
	}
}

type seedAlbum struct {
	Artist string
	Title  string
}

var demoAlbums = []seedAlbum{
	{Artist: "Кино", Title: "Группа крови"},
	{Artist: "Кино", Title: "Звезда по имени Солнце"},
	{Artist: "Аквариум", Title: "Радио Африка"},
	{Artist: "ДДТ", Title: "Это всё..."},
}

// seedDemoData whitelists the default audio formats and, on an empty library,
// adds a handful of albums to browse.
func seedDemoData(ctx context.Context, ds dataStore) error {
	if err := filetypes.New(ds).EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("seed audio file types: %w", err)
	}

	existing, err := ds.ListAlbums(ctx)
	if err != nil {
		return fmt.Errorf("count albums: %w", err)
	}
	if len(existing) > 0 {
		log.Info().Int("albums", len(existing)).Msg("library not empty, skipping demo albums")
		return nil
	}

	artistIDs := make(map[string]int64)
	for _, seed := range demoAlbums {
		id, ok := artistIDs[seed.Artist]
		if !ok {
			artist, err := ds.CreateArtist(ctx, seed.Artist)
			if err != nil {
				return fmt.Errorf("seed artist %q: %w", seed.Artist, err)
			}
			id = artist.ID
			artistIDs[seed.Artist] = id
		}

		if _, err := ds.CreateAlbum(ctx, store.Album{ArtistID: id, Title: seed.Title}); err != nil {
			return fmt.Errorf("seed album %q: %w", seed.Title, err)
		}
	}

	log.Info().Int("albums", len(demoAlbums)).Msg("seeded demo albums")
	return nil
}
