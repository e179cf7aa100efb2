package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/glebarez/go-sqlite" // pure Go SQLite driver, registers "sqlite"
	"github.com/marcelsud/book-manager/book"
)

/* SQLite implementation of book.Repository.
 * One file, one table, auto-committed statements.
 */

type Repository struct {
	DB *sql.DB
}

// NewRepository opens (or creates) the database file and makes sure the books table exists
func NewRepository(ctx context.Context, path string) (*Repository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite database: %w", err)
	}
	r := &Repository{DB: db}
	if err := r.CreateTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) Select(ctx context.Context, id int64) (book.Book, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, title, author, year, front_image, back_image
		FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return book.Book{}, book.ErrNotFound
	}
	if err != nil {
		return book.Book{}, fmt.Errorf("selecting book: %w", err)
	}
	return b, nil
}

func (r *Repository) List(ctx context.Context, filter string) ([]book.Book, error) {
	query := `SELECT id, title, author, year, front_image, back_image FROM books`
	var args []any
	if filter != "" {
		query += ` WHERE title LIKE ? ESCAPE '\' OR author LIKE ? ESCAPE '\'`
		pattern := likePattern(filter)
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY id DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting books: %w", err)
	}
	defer rows.Close()

	books := []book.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating books: %w", err)
	}
	return books, nil
}

func (r *Repository) Stats(ctx context.Context) (book.Stats, error) {
	var s book.Stats
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(front_image), COUNT(back_image) FROM books`).
		Scan(&s.Total, &s.WithFront, &s.WithBack)
	if err != nil {
		return book.Stats{}, fmt.Errorf("counting books: %w", err)
	}
	return s, nil
}

func (r *Repository) Insert(ctx context.Context, b book.Book) (int64, error) {
	stmt, err := r.DB.PrepareContext(ctx, `
		insert into books (title, author, year, front_image, back_image)
		values(?,?,?,?,?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()
	result, err := stmt.ExecContext(ctx,
		b.Title,
		b.Author,
		nullInt(b.Year),
		nullString(b.FrontImage),
		nullString(b.BackImage),
	)
	if err != nil {
		return 0, fmt.Errorf("executing statement: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert ID: %w", err)
	}
	return id, nil
}

// Update overwrites every column; a missing id changes nothing
func (r *Repository) Update(ctx context.Context, b book.Book) error {
	_, err := r.DB.ExecContext(ctx, `
		update books set title=?, author=?, year=?, front_image=?, back_image=? where id=?`,
		b.Title,
		b.Author,
		nullInt(b.Year),
		nullString(b.FrontImage),
		nullString(b.BackImage),
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("updating book: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	return nil
}

// CreateTable creates the books table when it does not exist yet.
// AUTOINCREMENT keeps ids from being reused after a delete.
func (r *Repository) CreateTable(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS books (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			author TEXT NOT NULL,
			year INTEGER,
			front_image TEXT,
			back_image TEXT
		)`)
	if err != nil {
		return fmt.Errorf("creating table: %w", err)
	}
	return nil
}

func (r *Repository) Close(ctx context.Context) error {
	if r.DB == nil {
		return nil
	}
	if err := r.DB.Close(); err != nil {
		return fmt.Errorf("closing repository: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(s scanner) (book.Book, error) {
	var (
		b           book.Book
		year        sql.NullInt64
		front, back sql.NullString
	)
	if err := s.Scan(&b.ID, &b.Title, &b.Author, &year, &front, &back); err != nil {
		return book.Book{}, err
	}
	if year.Valid {
		y := int(year.Int64)
		b.Year = &y
	}
	b.FrontImage = front.String
	b.BackImage = back.String
	return b, nil
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns a search term into a "contains" pattern with wildcards escaped
func likePattern(filter string) string {
	return "%" + likeEscaper.Replace(filter) + "%"
}
