package albums

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

// Store captures the persistence needs for album workflows.
type Store interface {
	ListAlbums(ctx context.Context) ([]store.Album, error)
	AlbumByID(ctx context.Context, id int64) (store.Album, error)
	SongsByAlbum(ctx context.Context, albumID int64) ([]store.Song, error)
	CreateAlbum(ctx context.Context, album store.Album) (store.Album, error)
	DeleteAlbum(ctx context.Context, id int64) (store.DeletedAlbum, error)
}

// Files stores and removes uploaded media.
type Files interface {
	Save(ctx context.Context, dir, ext string, r io.Reader) (string, error)
	Remove(rel string) error
}

// Detail is an album together with its songs in insertion order.
type Detail struct {
	Album store.Album
	Songs []store.Song
}

// Service coordinates album-related operations.
type Service interface {
	List(ctx context.Context) ([]store.Album, error)
	Get(ctx context.Context, id int64) (store.Album, error)
	Detail(ctx context.Context, id int64) (Detail, error)
	Create(ctx context.Context, form forms.AlbumForm) (store.Album, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store Store
	files Files
}

// New constructs a Service backed by the provided Store and media Files.
func New(store Store, files Files) Service {
	return &service{store: store, files: files}
}

func (s *service) List(ctx context.Context) ([]store.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListAlbums(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (store.Album, error) {
	if err := ctx.Err(); err != nil {
		return store.Album{}, err
	}
	return s.store.AlbumByID(ctx, id)
}

func (s *service) Detail(ctx context.Context, id int64) (Detail, error) {
	album, err := s.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	songs, err := s.store.SongsByAlbum(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	return Detail{Album: album, Songs: songs}, nil
}

func (s *service) Create(ctx context.Context, form forms.AlbumForm) (store.Album, error) {
	if err := ctx.Err(); err != nil {
		return store.Album{}, err
	}

	clean, err := form.Validate()
	if err != nil {
		return store.Album{}, err
	}

	album := store.Album{ArtistID: clean.ArtistID, Title: clean.Title}
	if clean.Logo != nil {
		album.Logo, err = s.files.Save(ctx, media.LogosDir, clean.LogoExtension, clean.Logo.Content)
		if err != nil {
			return store.Album{}, fmt.Errorf("store logo: %w", err)
		}
	}

	created, err := s.store.CreateAlbum(ctx, album)
	if err != nil {
		s.discard(ctx, album.Logo)
		if errors.Is(err, store.ErrArtistNotFound) {
			errs := forms.NewErrors()
			errs.Add("band", forms.MsgInvalidChoice)
			return store.Album{}, errs
		}
		return store.Album{}, err
	}
	return created, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	deleted, err := s.store.DeleteAlbum(ctx, id)
	if err != nil {
		return err
	}

	s.discard(ctx, deleted.Album.Logo)
	for _, file := range deleted.AudioFiles {
		s.discard(ctx, file)
	}
	return nil
}

func (s *service) discard(ctx context.Context, rel string) {
	if rel == "" {
		return
	}
	if err := s.files.Remove(rel); err != nil {
		logging.WithContext(ctx).Warn().Err(err).Str("file", rel).Msg("remove media file")
	}
}
