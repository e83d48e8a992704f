package models

import (
	"regexp"
	"strings"
	"time"
)

const (
	UsernameMin = 3
	UsernameMax = 50
	PasswordMin = 6
	// bcrypt ignores everything past 72 bytes.
	PasswordMax = 72
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthorSummary is the subset of a user exposed next to a post.
type AuthorSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u User) Summary() AuthorSummary {
	return AuthorSummary{ID: u.ID, Username: u.Username, Email: u.Email}
}

// Normalize trims surrounding whitespace. Email case is preserved, so
// uniqueness is an exact match.
func (u *User) Normalize() {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)
}

func (u *User) Validate() error {
	if n := len([]rune(u.Username)); n < UsernameMin || n > UsernameMax {
		return NewValidationError("username must be between 3 and 50 characters")
	}
	if !ValidEmail(u.Email) {
		return NewValidationError("invalid email")
	}
	return nil
}

func ValidEmail(email string) bool { return emailPattern.MatchString(email) }

func ValidatePassword(p string) error {
	if len(p) < PasswordMin {
		return NewValidationError("password must be at least 6 characters")
	}
	if len(p) > PasswordMax {
		return NewValidationError("password must be at most 72 bytes")
	}
	return nil
}
