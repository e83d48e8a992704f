package services

import (
	"context"
	"errors"

	"github.com/baharkarakas/blog-backend/internal/models"
	repo "github.com/baharkarakas/blog-backend/internal/repository"
)

var errDB = errors.New("connection refused")

// stubUsers and stubPosts fail every call whose function field is unset.
type stubUsers struct {
	create     func(ctx context.Context, username, email, hash string) (models.User, error)
	getByID    func(ctx context.Context, id string) (models.User, error)
	getByEmail func(ctx context.Context, email string) (models.User, error)
}

func (s *stubUsers) Create(ctx context.Context, username, email, hash string) (models.User, error) {
	if s.create == nil {
		return models.User{}, errDB
	}
	return s.create(ctx, username, email, hash)
}

func (s *stubUsers) GetByID(ctx context.Context, id string) (models.User, error) {
	if s.getByID == nil {
		return models.User{}, errDB
	}
	return s.getByID(ctx, id)
}

func (s *stubUsers) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmail == nil {
		return models.User{}, errDB
	}
	return s.getByEmail(ctx, email)
}

type stubPosts struct {
	create        func(ctx context.Context, p models.Post) (models.Post, error)
	getByID       func(ctx context.Context, id string) (models.Post, error)
	getWithAuthor func(ctx context.Context, id string) (models.Post, error)
	list          func(ctx context.Context) ([]models.Post, error)
	listByAuthor  func(ctx context.Context, authorID string) ([]models.Post, error)
	update        func(ctx context.Context, p models.Post) (models.Post, error)
	delete        func(ctx context.Context, id string) error
}

func (s *stubPosts) Create(ctx context.Context, p models.Post) (models.Post, error) {
	if s.create == nil {
		return models.Post{}, errDB
	}
	return s.create(ctx, p)
}

func (s *stubPosts) GetByID(ctx context.Context, id string) (models.Post, error) {
	if s.getByID == nil {
		return models.Post{}, errDB
	}
	return s.getByID(ctx, id)
}

func (s *stubPosts) GetWithAuthor(ctx context.Context, id string) (models.Post, error) {
	if s.getWithAuthor == nil {
		return models.Post{}, errDB
	}
	return s.getWithAuthor(ctx, id)
}

func (s *stubPosts) List(ctx context.Context) ([]models.Post, error) {
	if s.list == nil {
		return nil, errDB
	}
	return s.list(ctx)
}

func (s *stubPosts) ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	if s.listByAuthor == nil {
		return nil, errDB
	}
	return s.listByAuthor(ctx, authorID)
}

func (s *stubPosts) Update(ctx context.Context, p models.Post) (models.Post, error) {
	if s.update == nil {
		return models.Post{}, errDB
	}
	return s.update(ctx, p)
}

func (s *stubPosts) Delete(ctx context.Context, id string) error {
	if s.delete == nil {
		return errDB
	}
	return s.delete(ctx, id)
}

var (
	_ repo.Users = (*stubUsers)(nil)
	_ repo.Posts = (*stubPosts)(nil)
)
