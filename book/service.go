package book

import (
	"context"
	"fmt"
	"io"
)

// Upload is a candidate cover image received with a create or update request.
// A zero Upload means no file was sent.
type Upload struct {
	Filename string
	Content  io.Reader
}

// ImageStore decides whether an upload is kept and stores it.
// Save returns an empty name when the upload is rejected.
type ImageStore interface {
	Save(ctx context.Context, upload Upload) (string, error)
}

type UseCase interface {
	List(ctx context.Context, filter string) ([]Book, error)
	Get(ctx context.Context, id int64) (Book, error)
	Create(ctx context.Context, in Input, front, back Upload) (Book, error)
	Update(ctx context.Context, id int64, in Input, front, back Upload) (Book, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	Repo   Repository
	Images ImageStore
}

func NewService(repo Repository, images ImageStore) *Service {
	return &Service{
		Repo:   repo,
		Images: images,
	}
}

func (s *Service) List(ctx context.Context, filter string) ([]Book, error) {
	all, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	return all, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Book, error) {
	b, err := s.Repo.Select(ctx, id)
	if err != nil {
		return Book{}, fmt.Errorf("selecting book: %w", err)
	}
	return b, nil
}

// Create validates the input before touching the image store, so a rejected
// request writes neither a row nor a file.
func (s *Service) Create(ctx context.Context, in Input, front, back Upload) (Book, error) {
	cmd, err := in.Validate()
	if err != nil {
		return Book{}, err
	}
	b := Book{
		Title:  cmd.Title,
		Author: cmd.Author,
		Year:   cmd.Year,
	}
	b.FrontImage, err = s.saveImage(ctx, front, "")
	if err != nil {
		return Book{}, err
	}
	b.BackImage, err = s.saveImage(ctx, back, "")
	if err != nil {
		return Book{}, err
	}
	id, err := s.Repo.Insert(ctx, b)
	if err != nil {
		return Book{}, fmt.Errorf("inserting book: %w", err)
	}
	b.ID = id
	return b, nil
}

// Update returns ErrNotFound when the book does not exist. Images are only
// replaced by uploads the image store accepts.
func (s *Service) Update(ctx context.Context, id int64, in Input, front, back Upload) (Book, error) {
	current, err := s.Repo.Select(ctx, id)
	if err != nil {
		return Book{}, fmt.Errorf("selecting book: %w", err)
	}
	cmd, err := in.Validate()
	if err != nil {
		return Book{}, err
	}
	b := Book{
		ID:     id,
		Title:  cmd.Title,
		Author: cmd.Author,
		Year:   cmd.Year,
	}
	b.FrontImage, err = s.saveImage(ctx, front, current.FrontImage)
	if err != nil {
		return Book{}, err
	}
	b.BackImage, err = s.saveImage(ctx, back, current.BackImage)
	if err != nil {
		return Book{}, err
	}
	if err := s.Repo.Update(ctx, b); err != nil {
		return Book{}, fmt.Errorf("updating book: %w", err)
	}
	return b, nil
}

// Delete removes the row only; stored images are left on disk.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.Repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	return nil
}

func (s *Service) saveImage(ctx context.Context, u Upload, fallback string) (string, error) {
	if u.Filename == "" || u.Content == nil {
		return fallback, nil
	}
	name, err := s.Images.Save(ctx, u)
	if err != nil {
		return "", fmt.Errorf("saving image %q: %w", u.Filename, err)
	}
	if name == "" {
		return fallback, nil
	}
	return name, nil
}
