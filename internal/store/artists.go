package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Artist is the band an album belongs to.
type Artist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreateArtist inserts a new artist.
func (s *Store) CreateArtist(ctx context.Context, name string) (Artist, error) {
	artist := Artist{Name: strings.TrimSpace(name)}

	if err := s.db.QueryRowContext(ctx, `
		INSERT INTO artists (name)
		VALUES ($1)
		RETURNING id
	`, artist.Name).Scan(&artist.ID); err != nil {
		return Artist{}, fmt.Errorf("insert artist: %w", err)
	}

	return artist, nil
}

// ListArtists returns every artist ordered by name.
func (s *Store) ListArtists(ctx context.Context) ([]Artist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name
		FROM artists
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select artists: %w", err)
	}
	defer rows.Close()

	var artists []Artist
	for rows.Next() {
		var a Artist
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		artists = append(artists, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artists: %w", err)
	}

	return artists, nil
}

// ArtistByID returns a single artist by its identifier.
func (s *Store) ArtistByID(ctx context.Context, id int64) (Artist, error) {
	var a Artist
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name
		FROM artists
		WHERE id = $1
	`, id).Scan(&a.ID, &a.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Artist{}, ErrArtistNotFound
		}
		return Artist{}, fmt.Errorf("get artist: %w", err)
	}
	return a, nil
}
