package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/baharkarakas/blog-backend/internal/models"
	repo "github.com/baharkarakas/blog-backend/internal/repository"
)

type postsRepo struct{ db DBTX }

const postColumns = `id, title, content, author_id, created_at, updated_at`

const postWithAuthorSelect = `
SELECT p.id, p.title, p.content, p.author_id, p.created_at, p.updated_at,
       COALESCE(u.username, ''), COALESCE(u.email, '')
  FROM posts p
  LEFT JOIN users u ON u.id = p.author_id`

func scanPost(row pgx.Row) (models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanPostWithAuthor(row pgx.Row) (models.Post, error) {
	var (
		p models.Post
		a models.AuthorSummary
	)
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt, &a.Username, &a.Email)
	a.ID = p.AuthorID
	p.Author = &a
	return p, err
}

func (r *postsRepo) Create(ctx context.Context, p models.Post) (models.Post, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	out, err := scanPost(r.db.QueryRow(ctx,
		`INSERT INTO posts(id, title, content, author_id) VALUES($1,$2,$3,$4)
		 RETURNING `+postColumns,
		p.ID, p.Title, p.Content, p.AuthorID,
	))
	return out, mapErr(err)
}

func (r *postsRepo) GetByID(ctx context.Context, id string) (models.Post, error) {
	p, err := scanPost(r.db.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id=$1`, id))
	return p, mapErr(err)
}

func (r *postsRepo) GetWithAuthor(ctx context.Context, id string) (models.Post, error) {
	p, err := scanPostWithAuthor(r.db.QueryRow(ctx, postWithAuthorSelect+` WHERE p.id=$1`, id))
	if err != nil {
		return models.Post{}, mapErr(err)
	}
	return p, nil
}

func (r *postsRepo) List(ctx context.Context) ([]models.Post, error) {
	rows, err := r.db.Query(ctx, postWithAuthorSelect+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Post{}
	for rows.Next() {
		p, err := scanPostWithAuthor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postsRepo) ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+postColumns+` FROM posts WHERE author_id=$1 ORDER BY created_at DESC`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postsRepo) Update(ctx context.Context, p models.Post) (models.Post, error) {
	out, err := scanPost(r.db.QueryRow(ctx,
		`UPDATE posts SET title=$2, content=$3, updated_at=now() WHERE id=$1
		 RETURNING `+postColumns,
		p.ID, p.Title, p.Content,
	))
	return out, mapErr(err)
}

func (r *postsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
