package models

import (
	"strings"
	"time"
)

const (
	TitleMax   = 200
	ContentMax = 100000
)

// Post is owned by exactly one author, fixed at creation. Author is only
// populated on reads that resolve it.
type Post struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	AuthorID  string         `json:"author_id"`
	Author    *AuthorSummary `json:"author,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// PostPatch carries the fields a client sent. A nil field was absent.
type PostPatch struct {
	Title   *string
	Content *string
}

func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return NewValidationError("title is required")
	}
	if len([]rune(p.Title)) > TitleMax {
		return NewValidationError("title must be at most 200 characters")
	}
	if len(p.Content) > ContentMax {
		return NewValidationError("content is too long")
	}
	return nil
}

// Apply merges the patch into p. With truthy set, empty strings keep the
// existing value.
func (p *Post) Apply(patch PostPatch, truthy bool) {
	if patch.Title != nil && (!truthy || *patch.Title != "") {
		p.Title = *patch.Title
	}
	if patch.Content != nil && (!truthy || *patch.Content != "") {
		p.Content = *patch.Content
	}
}
