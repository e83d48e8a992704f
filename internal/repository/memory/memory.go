// Package memory holds mutex-guarded, insertion-ordered implementations of
// the repository interfaces. It backs STORE_DRIVER=memory and the tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/blog-backend/internal/models"
	repo "github.com/baharkarakas/blog-backend/internal/repository"
)

type Store struct {
	mu        sync.RWMutex
	users     map[string]models.User
	byEmail   map[string]string
	posts     map[string]models.Post
	postOrder []string
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:   map[string]models.User{},
		byEmail: map[string]string{},
		posts:   map[string]models.Post{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() repo.Users { return (*usersRepo)(s) }
func (s *Store) Posts() repo.Posts { return (*postsRepo)(s) }

type usersRepo Store

func (r *usersRepo) Create(_ context.Context, username, email, hash string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[email]; ok {
		return models.User{}, repo.ErrDuplicate
	}
	now := r.now()
	u := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[u.ID] = u
	r.byEmail[email] = u.ID
	return u, nil
}

func (r *usersRepo) GetByID(_ context.Context, id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return r.users[id], nil
}

type postsRepo Store

func (r *postsRepo) Create(_ context.Context, p models.Post) (models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, ok := r.posts[p.ID]; ok {
		return models.Post{}, repo.ErrDuplicate
	}
	now := r.now()
	p.Author = nil
	p.CreatedAt, p.UpdatedAt = now, now
	r.posts[p.ID] = p
	r.postOrder = append(r.postOrder, p.ID)
	return p, nil
}

func (r *postsRepo) GetByID(_ context.Context, id string) (models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return models.Post{}, repo.ErrNotFound
	}
	return p, nil
}

func (r *postsRepo) GetWithAuthor(_ context.Context, id string) (models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return models.Post{}, repo.ErrNotFound
	}
	return r.withAuthor(p), nil
}

// withAuthor must be called with mu held.
func (r *postsRepo) withAuthor(p models.Post) models.Post {
	a := models.AuthorSummary{ID: p.AuthorID}
	if u, ok := r.users[p.AuthorID]; ok {
		a = u.Summary()
	}
	p.Author = &a
	return p
}

func (r *postsRepo) List(_ context.Context) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Post, 0, len(r.postOrder))
	for _, id := range r.postOrder {
		out = append(out, r.withAuthor(r.posts[id]))
	}
	return out, nil
}

func (r *postsRepo) ListByAuthor(_ context.Context, authorID string) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Post{}
	for _, id := range r.postOrder {
		if p := r.posts[id]; p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *postsRepo) Update(_ context.Context, p models.Post) (models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.posts[p.ID]
	if !ok {
		return models.Post{}, repo.ErrNotFound
	}
	cur.Title = p.Title
	cur.Content = p.Content
	cur.UpdatedAt = r.now()
	r.posts[p.ID] = cur
	return cur, nil
}

func (r *postsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.posts, id)
	for i, pid := range r.postOrder {
		if pid == id {
			r.postOrder = append(r.postOrder[:i], r.postOrder[i+1:]...)
			break
		}
	}
	return nil
}
