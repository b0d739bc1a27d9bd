package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestCreateAudioFileTypeLowercases(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO audio_file_types (name)
		VALUES ($1)
		RETURNING id
	`)).
		WithArgs("flac").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	ft, err := s.CreateAudioFileType(context.Background(), " FLAC ")
	if err != nil {
		t.Fatalf("CreateAudioFileType error: %v", err)
	}
	if ft.ID != 3 || ft.Name != "flac" {
		t.Fatalf("unexpected file type: %#v", ft)
	}
}

func TestCreateAudioFileTypeDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO audio_file_types`)).
		WithArgs("mp3").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if _, err := s.CreateAudioFileType(context.Background(), "mp3"); !errors.Is(err, ErrFileTypeExists) {
		t.Fatalf("expected ErrFileTypeExists, got %v", err)
	}
}

func TestAudioFileTypeExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs("wav").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.AudioFileTypeExists(context.Background(), "wav")
	if err != nil {
		t.Fatalf("AudioFileTypeExists error: %v", err)
	}
	if !ok {
		t.Fatalf("expected wav to be whitelisted")
	}
}

func TestDeleteAudioFileTypeNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM audio_file_types
		WHERE id = $1
	`)).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.DeleteAudioFileType(context.Background(), 42); !errors.Is(err, ErrFileTypeNotFound) {
		t.Fatalf("expected ErrFileTypeNotFound, got %v", err)
	}
}

func TestEnsureAudioFileTypes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	insert := regexp.QuoteMeta(`
			INSERT INTO audio_file_types (name)
			VALUES ($1)
			ON CONFLICT (name) DO NOTHING
		`)

	mock.ExpectBegin()
	mock.ExpectExec(insert).WithArgs("mp3").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insert).WithArgs("ogg").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := s.EnsureAudioFileTypes(context.Background(), []string{"MP3", "ogg"}); err != nil {
		t.Fatalf("EnsureAudioFileTypes error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
