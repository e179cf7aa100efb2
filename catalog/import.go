package catalog

import (
	"context"
	"fmt"

	"github.com/marcelsud/book-manager/book"
)

// Import creates every loaded entry in order and stops at the first failure.
// The books created before the failure are returned along with the error.
func (l *Loader) Import(ctx context.Context, svc book.UseCase) ([]book.Book, error) {
	created := make([]book.Book, 0, len(l.entries))
	for i, e := range l.entries {
		b, err := l.importEntry(ctx, svc, e)
		if err != nil {
			return created, fmt.Errorf("importing entry %d (%q): %w", i+1, e.Title, err)
		}
		created = append(created, b)
	}
	return created, nil
}

func (l *Loader) importEntry(ctx context.Context, svc book.UseCase, e Entry) (book.Book, error) {
	front, frontFile, err := l.open(e.FrontImage)
	if err != nil {
		return book.Book{}, err
	}
	if frontFile != nil {
		defer frontFile.Close()
	}
	back, backFile, err := l.open(e.BackImage)
	if err != nil {
		return book.Book{}, err
	}
	if backFile != nil {
		defer backFile.Close()
	}
	return svc.Create(ctx, e.Input(), front, back)
}
