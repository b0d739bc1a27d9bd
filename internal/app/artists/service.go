package artists

import (
	"context"
	"strings"

	"github.com/bugskoyan/spotify/internal/forms"
	"github.com/bugskoyan/spotify/internal/store"
)

// Filter narrows the list of returned artists.
type Filter struct {
	Name string
}

// Store captures the persistence needs for artist workflows.
type Store interface {
	ListArtists(ctx context.Context) ([]store.Artist, error)
	CreateArtist(ctx context.Context, name string) (store.Artist, error)
}

// Service provides artist-centric operations.
type Service interface {
	List(ctx context.Context, filter Filter) ([]store.Artist, error)
	Create(ctx context.Context, form forms.ArtistForm) (store.Artist, error)
}

type service struct {
	store Store
}

// New constructs an artist Service backed by the supplied store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, filter Filter) ([]store.Artist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	artists, err := s.store.ListArtists(ctx)
	if err != nil {
		return nil, err
	}

	target := strings.ToLower(strings.TrimSpace(filter.Name))
	if target == "" {
		return artists, nil
	}

	matched := make([]store.Artist, 0, len(artists))
	for _, artist := range artists {
		if strings.Contains(strings.ToLower(artist.Name), target) {
			matched = append(matched, artist)
		}
	}
	return matched, nil
}

func (s *service) Create(ctx context.Context, form forms.ArtistForm) (store.Artist, error) {
	if err := ctx.Err(); err != nil {
		return store.Artist{}, err
	}

	name, err := form.Validate()
	if err != nil {
		return store.Artist{}, err
	}
	return s.store.CreateArtist(ctx, name)
}
