package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/theatre-booking/internal/model"
)

func TestGenreRepoCreateDuplicateName(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewGenreRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO genres (name) VALUES (?)")).
		WithArgs("Drama").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'Drama' for key 'uq_genres_name'"))

	g := &model.Genre{Name: " Drama "}
	if err := repo.Create(context.Background(), g); !errors.Is(err, ErrGenreExists) {
		t.Fatalf("err = %v, want ErrGenreExists", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGenreRepoDelete(t *testing.T) {
	t.Run("referenced by plays", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock: %v", err)
		}
		defer db.Close()
		repo := NewGenreRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM play_genres WHERE genre_id = ?")).
			WithArgs(uint64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		if err := repo.Delete(context.Background(), 2); !errors.Is(err, ErrConflict) {
			t.Fatalf("err = %v, want ErrConflict", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock: %v", err)
		}
		defer db.Close()
		repo := NewGenreRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM play_genres WHERE genre_id = ?")).
			WithArgs(uint64(9)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM genres WHERE id = ?")).
			WithArgs(uint64(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		// Deleting an absent genre fails instead of silently succeeding.
		if err := repo.Delete(context.Background(), 9); !errors.Is(err, ErrGenreNotFound) {
			t.Fatalf("err = %v, want ErrGenreNotFound", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock: %v", err)
		}
		defer db.Close()
		repo := NewGenreRepo(db)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM play_genres WHERE genre_id = ?")).
			WithArgs(uint64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM genres WHERE id = ?")).
			WithArgs(uint64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := repo.Delete(context.Background(), 2); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}
