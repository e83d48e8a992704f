package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/baharkarakas/blog-backend/internal/cache"
	"github.com/baharkarakas/blog-backend/internal/metrics"
	"github.com/baharkarakas/blog-backend/internal/models"
	repo "github.com/baharkarakas/blog-backend/internal/repository"
)

type PostService struct {
	posts repo.Posts
	cache *cache.PostCache

	// truthy keeps the old merge where an empty string leaves a field as is.
	truthy bool
}

func NewPostService(p repo.Posts, c *cache.PostCache, truthyMerge bool) *PostService {
	return &PostService{posts: p, cache: c, truthy: truthyMerge}
}

// lookupErr maps repository errors; malformed ids never reach the store.
func lookupErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return models.NewNotFoundError("Post")
	}
	return models.NewInternalError(err)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *PostService) invalidate(ctx context.Context, id string) {
	keys := []string{cache.ListKey}
	if id != "" {
		keys = append(keys, cache.PostKey(id))
	}
	s.cache.Invalidate(ctx, keys...)
}

// Create stores a post owned by authorID, which must come from a verified token.
func (s *PostService) Create(ctx context.Context, authorID, title, content string) (models.Post, error) {
	p := models.Post{Title: title, Content: content, AuthorID: authorID}
	if err := p.Validate(); err != nil {
		return models.Post{}, err
	}
	created, err := s.posts.Create(ctx, p)
	if err != nil {
		return models.Post{}, models.NewInternalError(err)
	}
	s.invalidate(ctx, "")
	metrics.PostOps.WithLabelValues("create").Inc()
	return created, nil
}

func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	var out []models.Post
	err := s.cache.Aside(ctx, cache.ListKey, &out, func() error {
		list, err := s.posts.List(ctx)
		out = list
		return err
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if out == nil {
		out = []models.Post{}
	}
	return out, nil
}

func (s *PostService) ListMine(ctx context.Context, authorID string) ([]models.Post, error) {
	out, err := s.posts.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if out == nil {
		out = []models.Post{}
	}
	return out, nil
}

// Get is the authenticated read; it bypasses the cache.
func (s *PostService) Get(ctx context.Context, id string) (models.Post, error) {
	if !validID(id) {
		return models.Post{}, models.NewNotFoundError("Post")
	}
	p, err := s.posts.GetWithAuthor(ctx, id)
	if err != nil {
		return models.Post{}, lookupErr(err)
	}
	return p, nil
}

func (s *PostService) GetPublic(ctx context.Context, id string) (models.Post, error) {
	if !validID(id) {
		return models.Post{}, models.NewNotFoundError("Post")
	}
	var p models.Post
	err := s.cache.Aside(ctx, cache.PostKey(id), &p, func() error {
		found, err := s.posts.GetWithAuthor(ctx, id)
		p = found
		return err
	})
	if err != nil {
		return models.Post{}, lookupErr(err)
	}
	return p, nil
}

// owned loads the post and checks that authorID wrote it.
func (s *PostService) owned(ctx context.Context, id, authorID string) (models.Post, error) {
	if !validID(id) {
		return models.Post{}, models.NewNotFoundError("Post")
	}
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return models.Post{}, lookupErr(err)
	}
	if p.AuthorID != authorID {
		return models.Post{}, models.NewForbiddenError("Unauthorized")
	}
	return p, nil
}

// Update applies patch to a post owned by authorID. Concurrent updates race
// and the last write wins.
func (s *PostService) Update(ctx context.Context, id, authorID string, patch models.PostPatch) (models.Post, error) {
	p, err := s.owned(ctx, id, authorID)
	if err != nil {
		return models.Post{}, err
	}
	p.Apply(patch, s.truthy)
	if err := p.Validate(); err != nil {
		return models.Post{}, err
	}
	updated, err := s.posts.Update(ctx, p)
	if err != nil {
		return models.Post{}, lookupErr(err)
	}
	s.invalidate(ctx, id)
	metrics.PostOps.WithLabelValues("update").Inc()
	return updated, nil
}

func (s *PostService) Delete(ctx context.Context, id, authorID string) error {
	if _, err := s.owned(ctx, id, authorID); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return lookupErr(err)
	}
	s.invalidate(ctx, id)
	metrics.PostOps.WithLabelValues("delete").Inc()
	return nil
}
