package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Song represents an uploaded track within an album.
type Song struct {
	ID         int64  `json:"id"`
	AlbumID    int64  `json:"albumId"`
	Title      string `json:"title"`
	AudioFile  string `json:"audioFile"`
	IsFavorite bool   `json:"isFavorite"`
}

// CreateSong attaches a new song to an existing album.
func (s *Store) CreateSong(ctx context.Context, song Song) (Song, error) {
	song.Title = strings.TrimSpace(song.Title)

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO songs (album_id, title, audio_file, is_favorite)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, song.AlbumID, song.Title, song.AudioFile, song.IsFavorite).Scan(&song.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return Song{}, ErrAlbumNotFound
		}
		return Song{}, fmt.Errorf("insert song: %w", err)
	}

	return song, nil
}

// SongsByAlbum lists the songs of an album in insertion order.
func (s *Store) SongsByAlbum(ctx context.Context, albumID int64) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, album_id, title, audio_file, is_favorite
		FROM songs
		WHERE album_id = $1
		ORDER BY id ASC
	`, albumID)
	if err != nil {
		return nil, fmt.Errorf("query songs: %w", err)
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		var song Song
		if err := rows.Scan(&song.ID, &song.AlbumID, &song.Title, &song.AudioFile, &song.IsFavorite); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}

	return songs, nil
}

// SongByID returns a single song by ID.
func (s *Store) SongByID(ctx context.Context, id int64) (Song, error) {
	var song Song
	err := s.db.QueryRowContext(ctx, `
		SELECT id, album_id, title, audio_file, is_favorite
		FROM songs
		WHERE id = $1
	`, id).Scan(&song.ID, &song.AlbumID, &song.Title, &song.AudioFile, &song.IsFavorite)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Song{}, ErrSongNotFound
		}
		return Song{}, fmt.Errorf("get song: %w", err)
	}
	return song, nil
}

// ToggleSongFavorite flips is_favorite in place and returns the new value.
func (s *Store) ToggleSongFavorite(ctx context.Context, id int64) (bool, error) {
	var favorite bool
	err := s.db.QueryRowContext(ctx, `
		UPDATE songs
		SET is_favorite = NOT is_favorite
		WHERE id = $1
		RETURNING is_favorite
	`, id).Scan(&favorite)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrSongNotFound
		}
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	return favorite, nil
}

// DeleteSong removes a song only when it belongs to the given album.
func (s *Store) DeleteSong(ctx context.Context, albumID, songID int64) (Song, error) {
	var song Song
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM songs
		WHERE id = $1 AND album_id = $2
		RETURNING id, album_id, title, audio_file, is_favorite
	`, songID, albumID).Scan(&song.ID, &song.AlbumID, &song.Title, &song.AudioFile, &song.IsFavorite)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Song{}, ErrSongNotFound
		}
		return Song{}, fmt.Errorf("delete song: %w", err)
	}
	return song, nil
}
