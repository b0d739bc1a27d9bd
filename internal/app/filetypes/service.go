// Package filetypes manages the whitelist of accepted audio extensions.
package filetypes

import (
	"context"
	"errors"

	"github.com/bugskoyan/spotify/internal/forms"
	"github.com/bugskoyan/spotify/internal/store"
)

// Defaults are installed by the seed command.
var Defaults = []string{"mp3", "wav", "ogg", "flac", "m4a"}

// Store captures the persistence needs for the whitelist.
type Store interface {
	ListAudioFileTypes(ctx context.Context) ([]store.AudioFileType, error)
	CreateAudioFileType(ctx context.Context, name string) (store.AudioFileType, error)
	DeleteAudioFileType(ctx context.Context, id int64) error
	AudioFileTypeExists(ctx context.Context, name string) (bool, error)
	EnsureAudioFileTypes(ctx context.Context, names []string) error
}

// Service exposes whitelist operations.
type Service interface {
	List(ctx context.Context) ([]store.AudioFileType, error)
	Add(ctx context.Context, form forms.FileTypeForm) (store.AudioFileType, error)
	Remove(ctx context.Context, id int64) error
	Allowed(ctx context.Context, ext string) (bool, error)
	EnsureDefaults(ctx context.Context) error
}

type service struct {
	store Store
}

// New constructs a whitelist Service.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context) ([]store.AudioFileType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListAudioFileTypes(ctx)
}

func (s *service) Add(ctx context.Context, form forms.FileTypeForm) (store.AudioFileType, error) {
	if err := ctx.Err(); err != nil {
		return store.AudioFileType{}, err
	}

	name, err := form.Validate()
	if err != nil {
		return store.AudioFileType{}, err
	}

	created, err := s.store.CreateAudioFileType(ctx, name)
	if errors.Is(err, store.ErrFileTypeExists) {
		errs := forms.NewErrors()
		errs.Add("name", forms.MsgFileTypeExists)
		return store.AudioFileType{}, errors.Join(errs, err)
	}
	return created, err
}

func (s *service) Remove(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteAudioFileType(ctx, id)
}

func (s *service) Allowed(ctx context.Context, ext string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if ext == "" {
		return false, nil
	}
	return s.store.AudioFileTypeExists(ctx, ext)
}

func (s *service) EnsureDefaults(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.EnsureAudioFileTypes(ctx, Defaults)
}
