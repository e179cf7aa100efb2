package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marcelsud/book-manager/book"
	_ "github.com/lib/pq" // PostgreSQL driver
)

/*
PostgreSQL implementation of book.Repository.

Same contract as the SQLite one:
- $1, $2 placeholders instead of ?
- SERIAL instead of AUTOINCREMENT
- RETURNING id instead of LastInsertId
*/

type Repository struct {
	DB *sql.DB
}

// NewRepository creates a repository with the default pool (25, 5, 5 min)
func NewRepository(ctx context.Context, connectionString string) (*Repository, error) {
	return NewRepositoryWithPoolConfig(ctx, connectionString, 25, 5, 5)
}

// NewRepositoryWithPoolConfig creates a repository with a custom pool and makes sure the books table exists.
// maxOpenConns: maximum simultaneous connections (0 = unlimited)
// maxIdleConns: maximum idle connections kept in the pool
// maxLifeMinutes: maximum time in minutes a connection may be reused
func NewRepositoryWithPoolConfig(ctx context.Context, connectionString string, maxOpenConns, maxIdleConns, maxLifeMinutes int) (*Repository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
	if maxLifeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(maxLifeMinutes) * time.Minute)
	}

	r := &Repository{DB: db}
	if err := r.CreateTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// Select fetches a book by ID
func (r *Repository) Select(ctx context.Context, id int64) (book.Book, error) {
	query := "SELECT id, title, author, year, front_image, back_image FROM books WHERE id = $1"

	b, err := scanBook(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return book.Book{}, book.ErrNotFound
	}
	if err != nil {
		return book.Book{}, fmt.Errorf("selecting book: %w", err)
	}
	return b, nil
}

// List returns books newest first, optionally filtered by title or author
func (r *Repository) List(ctx context.Context, filter string) ([]book.Book, error) {
	query := "SELECT id, title, author, year, front_image, back_image FROM books"
	var args []any
	if filter != "" {
		query += ` WHERE title LIKE $1 ESCAPE '\' OR author LIKE $1 ESCAPE '\'`
		args = append(args, likePattern(filter))
	}
	query += " ORDER BY id DESC"

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

// Stats counts books and stored covers
func (r *Repository) Stats(ctx context.Context) (book.Stats, error) {
	query := "SELECT COUNT(*), COUNT(front_image), COUNT(back_image) FROM books"

	var s book.Stats
	if err := r.DB.QueryRowContext(ctx, query).Scan(&s.Total, &s.WithFront, &s.WithBack); err != nil {
		return book.Stats{}, fmt.Errorf("counting books: %w", err)
	}
	return s, nil
}

// Insert adds a book and returns the generated ID
func (r *Repository) Insert(ctx context.Context, b book.Book) (int64, error) {
	query := `
		INSERT INTO books (title, author, year, front_image, back_image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.DB.QueryRowContext(ctx, query,
		b.Title,
		b.Author,
		nullInt(b.Year),
		nullString(b.FrontImage),
		nullString(b.BackImage),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting book: %w", err)
	}

	return id, nil
}

// Update overwrites an existing book; a missing ID is a no-op
func (r *Repository) Update(ctx context.Context, b book.Book) error {
	query := `
		UPDATE books
		SET title = $1, author = $2, year = $3, front_image = $4, back_image = $5
		WHERE id = $6
	`

	_, err := r.DB.ExecContext(ctx, query,
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

// Delete removes a book by ID; a missing ID is a no-op
func (r *Repository) Delete(ctx context.Context, id int64) error {
	query := "DELETE FROM books WHERE id = $1"

	if _, err := r.DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}

	return nil
}

// Close closes the connection pool
func (r *Repository) Close(ctx context.Context) error {
	if r.DB == nil {
		return nil
	}
	if err := r.DB.Close(); err != nil {
		return fmt.Errorf("closing repository: %w", err)
	}
	return nil
}

// CreateTable creates the books table when missing
func (r *Repository) CreateTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS books (
			id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT NOT NULL,
			year INTEGER,
			front_image TEXT,
			back_image TEXT
		)
	`

	if _, err := r.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	return nil
}

// DropTable removes the books table (tests only)
func (r *Repository) DropTable(ctx context.Context) error {
	query := "DROP TABLE IF EXISTS books CASCADE"

	if _, err := r.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("dropping table: %w", err)
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

func likePattern(filter string) string {
	return "%" + likeEscaper.Replace(filter) + "%"
}
