package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/baharkarakas/blog-backend/internal/models"
)

type usersRepo struct{ db DBTX }

const userColumns = `id, username, email, password_hash, created_at, updated_at`

func (r *usersRepo) Create(ctx context.Context, username, email, hash string) (models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx,
		`INSERT INTO users(id, username, email, password_hash) VALUES($1,$2,$3,$4)
		 RETURNING `+userColumns,
		uuid.NewString(), username, email, hash,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email=$1`, email,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}
