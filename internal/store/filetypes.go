package store

import (
	"context"
	"fmt"
	"strings"
)

// AudioFileType is one whitelisted upload extension, e.g. "mp3".
type AudioFileType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreateAudioFileType whitelists an extension. Names are stored lower-case.
func (s *Store) CreateAudioFileType(ctx context.Context, name string) (AudioFileType, error) {
	ft := AudioFileType{Name: strings.ToLower(strings.TrimSpace(name))}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO audio_file_types (name)
		VALUES ($1)
		RETURNING id
	`, ft.Name).Scan(&ft.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return AudioFileType{}, ErrFileTypeExists
		}
		return AudioFileType{}, fmt.Errorf("insert audio file type: %w", err)
	}

	return ft, nil
}

// ListAudioFileTypes returns the whitelist ordered by name.
func (s *Store) ListAudioFileTypes(ctx context.Context) ([]AudioFileType, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name
		FROM audio_file_types
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select audio file types: %w", err)
	}
	defer rows.Close()

	var types []AudioFileType
	for rows.Next() {
		var ft AudioFileType
		if err := rows.Scan(&ft.ID, &ft.Name); err != nil {
			return nil, fmt.Errorf("scan audio file type: %w", err)
		}
		types = append(types, ft)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audio file types: %w", err)
	}

	return types, nil
}

// AudioFileTypeExists reports whether the extension is whitelisted.
func (s *Store) AudioFileTypeExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM audio_file_types
			WHERE name = $1
		)
	`, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("lookup audio file type: %w", err)
	}
	return exists, nil
}

// DeleteAudioFileType removes an extension from the whitelist.
func (s *Store) DeleteAudioFileType(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM audio_file_types
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete audio file type: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete audio file type: %w", err)
	}
	if affected == 0 {
		return ErrFileTypeNotFound
	}
	return nil
}

// EnsureAudioFileTypes inserts any missing extensions, leaving existing rows untouched.
func (s *Store) EnsureAudioFileTypes(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	for _, name := range names {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO audio_file_types (name)
			VALUES ($1)
			ON CONFLICT (name) DO NOTHING
		`, strings.ToLower(strings.TrimSpace(name))); err != nil {
			return fmt.Errorf("insert audio file type %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return nil
}
