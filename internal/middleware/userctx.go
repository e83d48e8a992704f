package middleware

import "context"

type userKey struct{}

// UserCtx is the verified identity attached by AuthMiddleware.
type UserCtx struct {
	UserID string
}

func WithUser(ctx context.Context, u UserCtx) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func FromCtx(ctx context.Context) UserCtx {
	if v := ctx.Value(userKey{}); v != nil {
		if u, ok := v.(UserCtx); ok {
			return u
		}
	}
	return UserCtx{}
}

// UserID reports the authenticated user id, if any.
func UserID(ctx context.Context) (string, bool) {
	u := FromCtx(ctx)
	return u.UserID, u.UserID != ""
}
