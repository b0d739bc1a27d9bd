package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestCreateSongSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO songs (album_id, title, audio_file, is_favorite)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`)).
		WithArgs(int64(2), "Teardrop", "songs/t.mp3", false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(31)))

	song, err := s.CreateSong(context.Background(), Song{
		AlbumID:   2,
		Title:     " Teardrop",
		AudioFile: "songs/t.mp3",
	})
	if err != nil {
		t.Fatalf("CreateSong error: %v", err)
	}
	if song.ID != 31 || song.Title != "Teardrop" {
		t.Fatalf("unexpected song: %#v", song)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateSongMissingAlbum(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO songs`)).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	if _, err := s.CreateSong(context.Background(), Song{AlbumID: 9, Title: "x", AudioFile: "songs/x.mp3"}); !errors.Is(err, ErrAlbumNotFound) {
		t.Fatalf("expected ErrAlbumNotFound, got %v", err)
	}
}

func TestSongsByAlbum(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, album_id, title, audio_file, is_favorite
		FROM songs
		WHERE album_id = $1
		ORDER BY id ASC
	`)).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "album_id", "title", "audio_file", "is_favorite"}).
			AddRow(int64(1), int64(4), "Angel", "songs/1.mp3", true).
			AddRow(int64(2), int64(4), "Teardrop", "songs/2.mp3", false))

	songs, err := s.SongsByAlbum(context.Background(), 4)
	if err != nil {
		t.Fatalf("SongsByAlbum error: %v", err)
	}
	if len(songs) != 2 || songs[0].Title != "Angel" || !songs[0].IsFavorite {
		t.Fatalf("unexpected songs: %#v", songs)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSongByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM songs`)).
		WithArgs(int64(12)).
		WillReturnError(sql.ErrNoRows)

	if _, err := s.SongByID(context.Background(), 12); !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound, got %v", err)
	}
}

func TestToggleSongFavorite(t *testing.T) {
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		err     error
		want    bool
		wantErr error
	}{
		{
			name: "flipped on",
			rows: sqlmock.NewRows([]string{"is_favorite"}).AddRow(true),
			want: true,
		},
		{
			name: "flipped off",
			rows: sqlmock.NewRows([]string{"is_favorite"}).AddRow(false),
			want: false,
		},
		{
			name:    "missing song",
			err:     sql.ErrNoRows,
			wantErr: ErrSongNotFound,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock.New: %v", err)
			}
			defer db.Close()

			s := New(db)

			exp := mock.ExpectQuery(regexp.QuoteMeta(`
		UPDATE songs
		SET is_favorite = NOT is_favorite
		WHERE id = $1
		RETURNING is_favorite
	`)).WithArgs(int64(6))
			if tc.err != nil {
				exp.WillReturnError(tc.err)
			} else {
				exp.WillReturnRows(tc.rows)
			}

			got, err := s.ToggleSongFavorite(context.Background(), 6)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToggleSongFavorite error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected favorite %v, got %v", tc.want, got)
			}
		})
	}
}

func TestDeleteSongScopedToAlbum(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		DELETE FROM songs
		WHERE id = $1 AND album_id = $2
		RETURNING id, album_id, title, audio_file, is_favorite
	`)).
		WithArgs(int64(10), int64(1)).
		WillReturnError(sql.ErrNoRows)

	if _, err := s.DeleteSong(context.Background(), 1, 10); !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteSongReturnsRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM songs`)).
		WithArgs(int64(10), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "album_id", "title", "audio_file", "is_favorite"}).
			AddRow(int64(10), int64(2), "Glory Box", "songs/g.mp3", false))

	song, err := s.DeleteSong(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("DeleteSong error: %v", err)
	}
	if song.AudioFile != "songs/g.mp3" {
		t.Fatalf("unexpected song: %#v", song)
	}
}
