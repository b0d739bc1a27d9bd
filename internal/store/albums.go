package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Album models a record released by an artist.
type Album struct {
	ID       int64  `json:"id"`
	ArtistID int64  `json:"artistId"`
	Artist   string `json:"artist"`
	Title    string `json:"title"`
	Logo     string `json:"logo,omitempty"`
}

// DeletedAlbum reports what an album deletion removed, so callers can clean up media.
type DeletedAlbum struct {
	Album      Album
	AudioFiles []string
}

// CreateAlbum inserts a new album for an existing artist.
func (s *Store) CreateAlbum(ctx context.Context, album Album) (Album, error) {
	album.Title = strings.TrimSpace(album.Title)

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO albums (artist_id, title, logo)
		VALUES ($1, $2, $3)
		RETURNING id
	`, album.ArtistID, album.Title, album.Logo).Scan(&album.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return Album{}, ErrArtistNotFound
		}
		return Album{}, fmt.Errorf("insert album: %w", err)
	}

	return album, nil
}

// ListAlbums returns every album in insertion order.
func (s *Store) ListAlbums(ctx context.Context) ([]Album, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.artist_id, ar.name, a.title, a.logo
		FROM albums a
		JOIN artists ar ON ar.id = a.artist_id
		ORDER BY a.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select albums: %w", err)
	}
	defer rows.Close()

	albums, err := scanAlbumRows(rows)
	if err != nil {
		return nil, err
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}

	return albums, nil
}

// AlbumByID returns a single album by its identifier.
func (s *Store) AlbumByID(ctx context.Context, id int64) (Album, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.artist_id, ar.name, a.title, a.logo
		FROM albums a
		JOIN artists ar ON ar.id = a.artist_id
		WHERE a.id = $1
	`, id)

	album, err := scanAlbumRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Album{}, ErrAlbumNotFound
		}
		return Album{}, err
	}
	return album, nil
}

// DeleteAlbum removes an album; its songs go with it through the foreign key cascade.
func (s *Store) DeleteAlbum(ctx context.Context, id int64) (DeletedAlbum, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DeletedAlbum{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, `
		SELECT audio_file
		FROM songs
		WHERE album_id = $1
		ORDER BY id ASC
	`, id)
	if err != nil {
		return DeletedAlbum{}, fmt.Errorf("select album songs: %w", err)
	}

	var files []string
	for rows.Next() {
		var file string
		if err := rows.Scan(&file); err != nil {
			rows.Close()
			return DeletedAlbum{}, fmt.Errorf("scan song file: %w", err)
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return DeletedAlbum{}, fmt.Errorf("iterate song files: %w", err)
	}
	rows.Close()

	var album Album
	err = tx.QueryRowContext(ctx, `
		DELETE FROM albums
		WHERE id = $1
		RETURNING id, artist_id, title, logo
	`, id).Scan(&album.ID, &album.ArtistID, &album.Title, &album.Logo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DeletedAlbum{}, ErrAlbumNotFound
		}
		return DeletedAlbum{}, fmt.Errorf("delete album: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return DeletedAlbum{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return DeletedAlbum{Album: album, AudioFiles: files}, nil
}

type albumScanner interface {
	Scan(dest ...any) error
}

func scanAlbumRow(scanner albumScanner) (Album, error) {
	var a Album
	if err := scanner.Scan(&a.ID, &a.ArtistID, &a.Artist, &a.Title, &a.Logo); err != nil {
		return Album{}, fmt.Errorf("scan album: %w", err)
	}
	return a, nil
}

func scanAlbumRows(rows *sql.Rows) ([]Album, error) {
	var albums []Album

	for rows.Next() {
		a, err := scanAlbumRow(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, a)
	}

	return albums, nil
}
