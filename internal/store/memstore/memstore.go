// Package memstore keeps the music library in memory. It mirrors the Postgres
// store, including cascade deletes, and backs development runs and tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/bugskoyan/spotify/internal/store"
)

// Store is an in-memory music library.
type Store struct {
	mu        sync.RWMutex
	artists   map[int64]store.Artist
	albums    map[int64]store.Album
	songs     map[int64]store.Song
	fileTypes map[int64]store.AudioFileType
	nextID    int64
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		artists:   make(map[int64]store.Artist),
		albums:    make(map[int64]store.Album),
		songs:     make(map[int64]store.Song),
		fileTypes: make(map[int64]store.AudioFileType),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// CreateArtist inserts a new artist.
func (s *Store) CreateArtist(_ context.Context, name string) (store.Artist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	artist := store.Artist{ID: s.id(), Name: strings.TrimSpace(name)}
	s.artists[artist.ID] = artist
	return artist, nil
}

// ListArtists returns every artist ordered by name.
func (s *Store) ListArtists(_ context.Context) ([]store.Artist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artists := make([]store.Artist, 0, len(s.artists))
	for _, a := range s.artists {
		artists = append(artists, a)
	}
	sort.Slice(artists, func(i, j int) bool {
		if artists[i].Name != artists[j].Name {
			return artists[i].Name < artists[j].Name
		}
		return artists[i].ID < artists[j].ID
	})
	return artists, nil
}

// ArtistByID returns a single artist.
func (s *Store) ArtistByID(_ context.Context, id int64) (store.Artist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artist, ok := s.artists[id]
	if !ok {
		return store.Artist{}, store.ErrArtistNotFound
	}
	return artist, nil
}

// CreateAlbum inserts a new album for an existing artist.
func (s *Store) CreateAlbum(_ context.Context, album store.Album) (store.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artists[album.ArtistID]; !ok {
		return store.Album{}, store.ErrArtistNotFound
	}

	album.ID = s.id()
	album.Title = strings.TrimSpace(album.Title)
	album.Artist = ""
	s.albums[album.ID] = album
	return s.withArtist(album), nil
}

// ListAlbums returns every album in insertion order.
func (s *Store) ListAlbums(_ context.Context) ([]store.Album, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	albums := make([]store.Album, 0, len(s.albums))
	for _, a := range s.albums {
		albums = append(albums, s.withArtist(a))
	}
	sort.Slice(albums, func(i, j int) bool { return albums[i].ID < albums[j].ID })
	return albums, nil
}

// AlbumByID returns a single album.
func (s *Store) AlbumByID(_ context.Context, id int64) (store.Album, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	album, ok := s.albums[id]
	if !ok {
		return store.Album{}, store.ErrAlbumNotFound
	}
	return s.withArtist(album), nil
}

// DeleteAlbum removes an album and every song it owns.
func (s *Store) DeleteAlbum(_ context.Context, id int64) (store.DeletedAlbum, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	album, ok := s.albums[id]
	if !ok {
		return store.DeletedAlbum{}, store.ErrAlbumNotFound
	}

	var files []string
	for _, song := range s.sortedSongs(id) {
		files = append(files, song.AudioFile)
		delete(s.songs, song.ID)
	}
	delete(s.albums, id)

	return store.DeletedAlbum{Album: album, AudioFiles: files}, nil
}

// CreateSong attaches a new song to an existing album.
func (s *Store) CreateSong(_ context.Context, song store.Song) (store.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.albums[song.AlbumID]; !ok {
		return store.Song{}, store.ErrAlbumNotFound
	}

	song.ID = s.id()
	song.Title = strings.TrimSpace(song.Title)
	s.songs[song.ID] = song
	return song, nil
}

// SongsByAlbum lists the songs of an album in insertion order.
func (s *Store) SongsByAlbum(_ context.Context, albumID int64) ([]store.Song, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedSongs(albumID), nil
}

// SongByID returns a single song.
func (s *Store) SongByID(_ context.Context, id int64) (store.Song, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	song, ok := s.songs[id]
	if !ok {
		return store.Song{}, store.ErrSongNotFound
	}
	return song, nil
}

// ToggleSongFavorite flips is_favorite and returns the new value.
func (s *Store) ToggleSongFavorite(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	song, ok := s.songs[id]
	if !ok {
		return false, store.ErrSongNotFound
	}
	song.IsFavorite = !song.IsFavorite
	s.songs[id] = song
	return song.IsFavorite, nil
}

// DeleteSong removes a song only when it belongs to the given album.
func (s *Store) DeleteSong(_ context.Context, albumID, songID int64) (store.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	song, ok := s.songs[songID]
	if !ok || song.AlbumID != albumID {
		return store.Song{}, store.ErrSongNotFound
	}
	delete(s.songs, songID)
	return song, nil
}

// CountSongs reports how many song rows exist across all albums.
func (s *Store) CountSongs() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.songs)
}

// CreateAudioFileType whitelists an extension.
func (s *Store) CreateAudioFileType(_ context.Context, name string) (store.AudioFileType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.ToLower(strings.TrimSpace(name))
	if s.hasFileType(name) {
		return store.AudioFileType{}, store.ErrFileTypeExists
	}

	ft := store.AudioFileType{ID: s.id(), Name: name}
	s.fileTypes[ft.ID] = ft
	return ft, nil
}

// ListAudioFileTypes returns the whitelist ordered by name.
func (s *Store) ListAudioFileTypes(_ context.Context) ([]store.AudioFileType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	types := make([]store.AudioFileType, 0, len(s.fileTypes))
	for _, ft := range s.fileTypes {
		types = append(types, ft)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types, nil
}

// AudioFileTypeExists reports whether the extension is whitelisted.
func (s *Store) AudioFileTypeExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.hasFileType(name), nil
}

// DeleteAudioFileType removes an extension from the whitelist.
func (s *Store) DeleteAudioFileType(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fileTypes[id]; !ok {
		return store.ErrFileTypeNotFound
	}
	delete(s.fileTypes, id)
	return nil
}

// EnsureAudioFileTypes inserts any missing extensions.
func (s *Store) EnsureAudioFileTypes(_ context.Context, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if s.hasFileType(name) {
			continue
		}
		ft := store.AudioFileType{ID: s.id(), Name: name}
		s.fileTypes[ft.ID] = ft
	}
	return nil
}

func (s *Store) hasFileType(name string) bool {
	for _, ft := range s.fileTypes {
		if ft.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) withArtist(album store.Album) store.Album {
	if artist, ok := s.artists[album.ArtistID]; ok {
		album.Artist = artist.Name
	}
	return album
}

func (s *Store) sortedSongs(albumID int64) []store.Song {
	var songs []store.Song
	for _, song := range s.songs {
		if song.AlbumID == albumID {
			songs = append(songs, song)
		}
	}
	sort.Slice(songs, func(i, j int) bool { return songs[i].ID < songs[j].ID })
	return songs
}
