package book

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Reader.Select when no book has the requested id
var ErrNotFound = errors.New("book not found")

/* Small interfaces, composed below.
 * Update and Delete on a missing id are no-ops, not errors.
 */

type Reader interface {
	Select(ctx context.Context, id int64) (Book, error)
	// List returns books ordered by id descending, filtered by title or author when filter is not empty
	List(ctx context.Context, filter string) ([]Book, error)
	Stats(ctx context.Context) (Stats, error)
}

type Writer interface {
	Insert(ctx context.Context, book Book) (int64, error)
	Update(ctx context.Context, book Book) error
	Delete(ctx context.Context, id int64) error
}

type Repository interface {
	Reader
	Writer
	Close(ctx context.Context) error
}
