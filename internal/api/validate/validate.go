// Package validate collects request field errors at the HTTP boundary.
package validate

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/baharkarakas/blog-backend/internal/models"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string {
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Collect drops nil checks and returns the rest, or nil if all passed.
func Collect(checks ...*ErrField) Errs {
	var out Errs
	for _, c := range checks {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// AppError converts field errors into a validation AppError, or nil.
func (e Errs) AppError() *models.AppError {
	if len(e) == 0 {
		return nil
	}
	return &models.AppError{Code: models.CodeValidation, Message: e.Error()}
}

func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

func MaxLen(field, value string, max int) *ErrField {
	if utf8.RuneCountInString(value) > max {
		return &ErrField{Field: field, Msg: "must be at most " + strconv.Itoa(max) + " characters"}
	}
	return nil
}
