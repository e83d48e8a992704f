package repository

import (
	"context"
	"errors"

	"github.com/baharkarakas/blog-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type Users interface {
	// Create returns ErrDuplicate when the email is already registered.
	Create(ctx context.Context, username, email, passwordHash string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

type Posts interface {
	Create(ctx context.Context, p models.Post) (models.Post, error)
	GetByID(ctx context.Context, id string) (models.Post, error)
	// GetWithAuthor is GetByID with Author populated.
	GetWithAuthor(ctx context.Context, id string) (models.Post, error)
	// List returns every post with Author populated, in no guaranteed order.
	List(ctx context.Context) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error)
	// Update persists title and content only.
	Update(ctx context.Context, p models.Post) (models.Post, error)
	Delete(ctx context.Context, id string) error
}
