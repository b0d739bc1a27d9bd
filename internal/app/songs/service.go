package songs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bugskoyan/spotify/internal/forms"
	"github.com/bugskoyan/spotify/internal/logging"
	"github.com/bugskoyan/spotify/internal/media"
	"github.com/bugskoyan/spotify/internal/store"
)

// Store captures the persistence needs for song workflows.
type Store interface {
	AlbumByID(ctx context.Context, id int64) (store.Album, error)
	SongsByAlbum(ctx context.Context, albumID int64) ([]store.Song, error)
	CreateSong(ctx context.Context, song store.Song) (store.Song, error)
	DeleteSong(ctx context.Context, albumID, songID int64) (store.Song, error)
	ToggleSongFavorite(ctx context.Context, id int64) (bool, error)
	AudioFileTypeExists(ctx context.Context, name string) (bool, error)
}

// Files stores and removes uploaded media.
type Files interface {
	Save(ctx context.Context, dir, ext string, r io.Reader) (string, error)
	Remove(rel string) error
}

// Outcome classifies the result of a favorite toggle.
type Outcome int

const (
	Toggled Outcome = iota
	NotFound
	Failed
)

// FavoriteResult reports what happened to a favorite toggle.
type FavoriteResult struct {
	Outcome    Outcome
	IsFavorite bool
	Err        error
}

// Success reports whether the flag was flipped.
func (r FavoriteResult) Success() bool {
	return r.Outcome == Toggled
}

// Service exposes song-centric operations.
type Service interface {
	ListByAlbum(ctx context.Context, albumID int64) ([]store.Song, error)
	Create(ctx context.Context, albumID int64, form forms.SongForm) (store.Song, error)
	Delete(ctx context.Context, albumID, songID int64) error
	ToggleFavorite(ctx context.Context, songID int64) FavoriteResult
}

type service struct {
	store Store
	files Files
}

// New constructs a song Service backed by the provided Store and media Files.
func New(store Store, files Files) Service {
	return &service{store: store, files: files}
}

func (s *service) ListByAlbum(ctx context.Context, albumID int64) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.store.AlbumByID(ctx, albumID); err != nil {
		return nil, err
	}
	return s.store.SongsByAlbum(ctx, albumID)
}

// Create validates the form, then rejects duplicate titles and audio formats
// missing from the whitelist. Nothing is written to media storage until every
// check has passed.
func (s *service) Create(ctx context.Context, albumID int64, form forms.SongForm) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}

	if _, err := s.store.AlbumByID(ctx, albumID); err != nil {
		return store.Song{}, err
	}

	clean, err := form.Validate()
	if err != nil {
		return store.Song{}, err
	}

	existing, err := s.store.SongsByAlbum(ctx, albumID)
	if err != nil {
		return store.Song{}, err
	}
	for _, song := range existing {
		if song.Title == clean.Title {
			return store.Song{}, forms.NonFieldError(forms.MsgDuplicateSong)
		}
	}

	allowed := false
	if clean.Extension != "" {
		allowed, err = s.store.AudioFileTypeExists(ctx, clean.Extension)
		if err != nil {
			return store.Song{}, fmt.Errorf("check audio file type: %w", err)
		}
	}
	if !allowed {
		return store.Song{}, forms.NonFieldError(forms.MsgInvalidAudio)
	}

	rel, err := s.files.Save(ctx, media.SongsDir, clean.Extension, clean.AudioFile.Content)
	if err != nil {
		return store.Song{}, fmt.Errorf("store audio file: %w", err)
	}

	created, err := s.store.CreateSong(ctx, store.Song{
		AlbumID:   albumID,
		Title:     clean.Title,
		AudioFile: rel,
	})
	if err != nil {
		s.discard(ctx, rel)
		return store.Song{}, err
	}
	return created, nil
}

func (s *service) Delete(ctx context.Context, albumID, songID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.store.AlbumByID(ctx, albumID); err != nil {
		return err
	}

	deleted, err := s.store.DeleteSong(ctx, albumID, songID)
	if err != nil {
		return err
	}

	s.discard(ctx, deleted.AudioFile)
	return nil
}

func (s *service) ToggleFavorite(ctx context.Context, songID int64) FavoriteResult {
	if err := ctx.Err(); err != nil {
		return FavoriteResult{Outcome: Failed, Err: err}
	}

	favorite, err := s.store.ToggleSongFavorite(ctx, songID)
	switch {
	case err == nil:
		return FavoriteResult{Outcome: Toggled, IsFavorite: favorite}
	case errors.Is(err, store.ErrSongNotFound):
		return FavoriteResult{Outcome: NotFound, Err: err}
	default:
		logging.WithContext(ctx).Error().Err(err).Int64("song_id", songID).Msg("toggle favorite")
		return FavoriteResult{Outcome: Failed, Err: err}
	}
}

func (s *service) discard(ctx context.Context, rel string) {
	if rel == "" {
		return
	}
	if err := s.files.Remove(rel); err != nil {
		logging.WithContext(ctx).Warn().Err(err).Str("file", rel).Msg("remove media file")
	}
}
