package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/marcelsud/book-manager/book"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestRepository(t testing.TB) *Repository {
	t.Helper()
	ctx := context.Background()
	repo, err := NewRepository(ctx, filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close(ctx) })
	return repo
}

func intPtr(i int) *int {
	return &i
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	b := book.Book{
		Title:      "Foundation",
		Author:     "Isaac Asimov",
		Year:       intPtr(1951),
		FrontImage: "front.png",
	}
	id, err := repo.Insert(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	saved, err := repo.Select(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, b.Title, saved.Title)
	assert.Equal(t, 1951, *saved.Year)
	assert.Equal(t, "front.png", saved.FrontImage)
	assert.Empty(t, saved.BackImage)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	b.ID = id
	b.Title = "The Foundation"
	b.Year = nil
	b.BackImage = "back.jpg"
	require.NoError(t, repo.Update(ctx, b))
	saved, err = repo.Select(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "The Foundation", saved.Title)
	assert.Nil(t, saved.Year)
	assert.Equal(t, "back.jpg", saved.BackImage)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.Select(ctx, id)
	assert.ErrorIs(t, err, book.ErrNotFound)
	all, err = repo.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	for _, b := range []book.Book{
		{Title: "Dune", Author: "Frank Herbert"},
		{Title: "Neuromancer", Author: "William Gibson"},
		{Title: "100% Coverage", Author: "Anonymous"},
	} {
		_, err := repo.Insert(ctx, b)
		require.NoError(t, err)
	}

	t.Run("empty filter returns everything newest first", func(t *testing.T) {
		all, err := repo.List(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "100% Coverage", all[0].Title)
		assert.Equal(t, "Neuromancer", all[1].Title)
		assert.Equal(t, "Dune", all[2].Title)
	})
	t.Run("substring of title", func(t *testing.T) {
		all, err := repo.List(ctx, "un")
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Dune", all[0].Title)
	})
	t.Run("substring of author", func(t *testing.T) {
		all, err := repo.List(ctx, "Gibson")
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Neuromancer", all[0].Title)
	})
	t.Run("wildcards match literally", func(t *testing.T) {
		all, err := repo.List(ctx, "0%")
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "100% Coverage", all[0].Title)

		all, err = repo.List(ctx, "_")
		require.NoError(t, err)
		assert.Empty(t, all)
	})
	t.Run("no match", func(t *testing.T) {
		all, err := repo.List(ctx, "Tolkien")
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestRepository_MissingIDs(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	id, err := repo.Insert(ctx, book.Book{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)

	assert.NoError(t, repo.Delete(ctx, 999))
	assert.NoError(t, repo.Update(ctx, book.Book{ID: 999, Title: "Ghost", Author: "Nobody"}))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, id, all[0].ID)
	assert.Equal(t, "Dune", all[0].Title)
}

func TestRepository_IDsAreNotReused(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	id1, err := repo.Insert(ctx, book.Book{Title: "A", Author: "A"})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, id1))
	id2, err := repo.Insert(ctx, book.Book{Title: "B", Author: "B"})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)
}

func TestRepository_Stats(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	_, err := repo.Insert(ctx, book.Book{Title: "A", Author: "A", FrontImage: "a.png"})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, book.Book{Title: "B", Author: "B", FrontImage: "b.png", BackImage: "b2.png"})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, book.Book{Title: "C", Author: "C"})
	require.NoError(t, err)

	s, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, book.Stats{Total: 3, WithFront: 2, WithBack: 1}, s)
}

func TestRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	text := rapid.StringMatching(`[A-Za-z0-9 ':,.-]{1,40}`)
	image := rapid.OneOf(rapid.Just(""), rapid.StringMatching(`[a-z0-9_]{1,12}\.(png|jpg|gif)`))

	rapid.Check(t, func(t *rapid.T) {
		b := book.Book{
			Title:      text.Draw(t, "title"),
			Author:     text.Draw(t, "author"),
			FrontImage: image.Draw(t, "front"),
			BackImage:  image.Draw(t, "back"),
		}
		if rapid.Bool().Draw(t, "hasYear") {
			y := rapid.IntRange(-3000, 3000).Draw(t, "year")
			b.Year = &y
		}
		id, err := repo.Insert(ctx, b)
		if err != nil {
			t.Fatalf("inserting: %v", err)
		}
		all, err := repo.List(ctx, "")
		if err != nil {
			t.Fatalf("listing: %v", err)
		}
		if len(all) == 0 || all[0].ID != id {
			t.Fatalf("newest book should come first, got %+v", all)
		}
		b.ID = id
		assert.Equal(t, b, all[0])
	})
}
