// Package media stores uploaded audio files and album logos on local disk.
//
// Stored files are addressed by a slash-separated path relative to the media
// root, e.g. "songs/0b6c....mp3". That relative path is what the database keeps.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Directories used under the media root.
const (
	SongsDir = "songs"
	LogosDir = "logos"
)

// ErrInvalidPath rejects stored paths that would escape the media root.
var ErrInvalidPath = errors.New("invalid media path")

// Storage writes files below a root directory and serves them under a URL prefix.
type Storage struct {
	root      string
	urlPrefix string
}

// New prepares the root directory and returns a Storage.
func New(root, urlPrefix string) (*Storage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	if !strings.HasPrefix(urlPrefix, "/") {
		urlPrefix = "/" + urlPrefix
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &Storage{root: root, urlPrefix: urlPrefix}, nil
}

// Save copies r into dir under a generated name with the given extension and
// returns the stored relative path.
func (s *Storage) Save(ctx context.Context, dir, ext string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := filepath.Join(s.root, filepath.FromSlash(dir))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	name := uuid.NewString()
	if ext != "" {
		name += "." + strings.ToLower(ext)
	}

	tmp, err := os.CreateTemp(target, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(target, name)); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	tmp = nil

	return path.Join(dir, name), nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Storage) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}

// Exists reports whether a stored file is present.
func (s *Storage) Exists(rel string) bool {
	full, err := s.resolve(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// URL maps a stored relative path to the address it is served from.
func (s *Storage) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.urlPrefix + strings.TrimPrefix(rel, "/")
}

// Root is the directory files are stored under.
func (s *Storage) Root() string {
	return s.root
}

// Prefix is the URL prefix media is served under, always slash-terminated.
func (s *Storage) Prefix() string {
	return s.urlPrefix
}

// Handler serves stored files; mount it at Prefix().
func (s *Storage) Handler() http.Handler {
	return http.StripPrefix(s.urlPrefix, http.FileServer(http.Dir(s.root)))
}

func (s *Storage) resolve(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" || strings.Contains(rel, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, rel)
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
