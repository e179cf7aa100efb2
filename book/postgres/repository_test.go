//go:build !integration

package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/marcelsud/book-manager/book"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
Unit tests for the PostgreSQL repository.

sqlmock stands in for the database: these check the SQL we send and how
results are mapped, not the engine's behaviour (see the integration tests).

Run with: go test ./book/postgres/...
*/

var columns = []string{"id", "title", "author", "year", "front_image", "back_image"}

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Repository{DB: db}, mock
}

func TestRepository_Insert_Unit(t *testing.T) {
	repo, mock := newMockRepository(t)
	ctx := context.Background()
	year := 1965

	rows := sqlmock.NewRows([]string{"id"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta(
		`INSERT INTO books (title, author, year, front_image, back_image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
	)).WithArgs("Dune", "Frank Herbert", 1965, "front.png", nil).WillReturnRows(rows)

	id, err := repo.Insert(ctx, book.Book{
		Title:      "Dune",
		Author:     "Frank Herbert",
		Year:       &year,
		FrontImage: "front.png",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Select_Unit(t *testing.T) {
	t.Run("select existing book", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		ctx := context.Background()

		rows := sqlmock.NewRows(columns).
			AddRow(1, "Clean Code", "Robert Martin", 2008, nil, "back.jpg")
		mock.ExpectQuery(regexp.QuoteMeta(
			`SELECT id, title, author, year, front_image, back_image FROM books WHERE id = $1`,
		)).WithArgs(1).WillReturnRows(rows)

		b, err := repo.Select(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, int64(1), b.ID)
		assert.Equal(t, "Clean Code", b.Title)
		assert.Equal(t, "Robert Martin", b.Author)
		require.NotNil(t, b.Year)
		assert.Equal(t, 2008, *b.Year)
		assert.Empty(t, b.FrontImage)
		assert.Equal(t, "back.jpg", b.BackImage)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("select non-existent book returns error", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		ctx := context.Background()

		mock.ExpectQuery(regexp.QuoteMeta(
			`SELECT id, title, author, year, front_image, back_image FROM books WHERE id = $1`,
		)).WithArgs(999).WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.Select(ctx, 999)

		assert.ErrorIs(t, err, book.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error is wrapped", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		ctx := context.Background()

		mock.ExpectQuery(regexp.QuoteMeta(
			`SELECT id, title, author, year, front_image, back_image FROM books WHERE id = $1`,
		)).WithArgs(1).WillReturnError(errors.New("connection reset"))

		_, err := repo.Select(ctx, 1)

		require.Error(t, err)
		assert.NotErrorIs(t, err, book.ErrNotFound)
		assert.Contains(t, err.Error(), "selecting book")
	})
}

func TestRepository_List_Unit(t *testing.T) {
	t.Run("list all books", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		ctx := context.Background()

		rows := sqlmock.NewRows(columns).
			AddRow(3, "Book 3", "Author 3", nil, nil, nil).
			AddRow(2, "Book 2", "Author 2", 1999, "f.png", nil).
			AddRow(1, "Book 1", "Author 1", nil, nil, nil)
		mock.ExpectQuery(regexp.QuoteMeta(
			`SELECT id, title, author, year, front_image, back_image FROM books ORDER BY id DESC`,
		)).WillReturnRows(rows)

		books, err := repo.List(ctx, "")

		require.NoError(t, err)
		require.Len(t, books, 3)
		assert.Equal(t, "Book 3", books[0].Title)
		assert.Equal(t, "f.png", books[1].FrontImage)
		assert.Equal(t, 1999, *books[1].Year)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filter escapes wildcards", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		ctx := context.Background()

		mock.ExpectQuery(regexp.QuoteMeta(
			`SELECT id, title, author, year, front_image, back_image FROM books WHERE title LIKE $1 ESCAPE '\' OR author LIKE $1 ESCAPE '\' ORDER BY id DESC`,
		)).WithArgs(`%50\%\_off%`).WillReturnRows(sqlmock.NewRows(columns))

		books, err := repo.List(ctx, "50%_off")

		require.NoError(t, err)
		assert.NotNil(t, books)
		assert.Empty(t, books)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Stats_Unit(t *testing.T) {
	repo, mock := newMockRepository(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT COUNT(*), COUNT(front_image), COUNT(back_image) FROM books`,
	)).WillReturnRows(sqlmock.NewRows([]string{"total", "front", "back"}).AddRow(5, 3, 1))

	s, err := repo.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, book.Stats{Total: 5, WithFront: 3, WithBack: 1}, s)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update_Unit(t *testing.T) {
	for name, affected := range map[string]int64{"existing book": 1, "missing book is a no-op": 0} {
		t.Run(name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			ctx := context.Background()

			mock.ExpectExec(regexp.QuoteMeta(
				`UPDATE books
				SET title = $1, author = $2, year = $3, front_image = $4, back_image = $5
				WHERE id = $6`,
			)).WithArgs("Updated Title", "Updated Author", nil, nil, "back.gif", 1).
				WillReturnResult(sqlmock.NewResult(0, affected))

			err := repo.Update(ctx, book.Book{
				ID:        1,
				Title:     "Updated Title",
				Author:    "Updated Author",
				BackImage: "back.gif",
			})

			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_Delete_Unit(t *testing.T) {
	for name, affected := range map[string]int64{"existing book": 1, "missing book is a no-op": 0} {
		t.Run(name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			ctx := context.Background()

			mock.ExpectExec(regexp.QuoteMeta(
				`DELETE FROM books WHERE id = $1`,
			)).WithArgs(7).WillReturnResult(sqlmock.NewResult(0, affected))

			err := repo.Delete(ctx, 7)

			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_CreateTable_Unit(t *testing.T) {
	repo, mock := newMockRepository(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(
		`CREATE TABLE IF NOT EXISTS books (
			id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT NOT NULL,
			year INTEGER,
			front_image TEXT,
			back_image TEXT
		)`,
	)).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.CreateTable(ctx)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Close_Unit(t *testing.T) {
	t.Run("wraps driver error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		closeErr := errors.New("connection reset")
		mock.ExpectClose().WillReturnError(closeErr)

		repo := &Repository{DB: db}
		err = repo.Close(context.Background())

		require.ErrorIs(t, err, closeErr)
		assert.Contains(t, err.Error(), "closing repository")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil db", func(t *testing.T) {
		repo := &Repository{}
		assert.NoError(t, repo.Close(context.Background()))
	})
}
