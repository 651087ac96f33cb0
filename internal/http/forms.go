package http

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

type registerForm struct {
	Username string `form:"username" binding:"required,max=50"`
	Password string `form:"password" binding:"required,max=72"`
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type postForm struct {
	Title   string `form:"title" binding:"required,max=200"`
	Content string `form:"content" binding:"required"`
}

// FieldError is a per-field validation failure shown next to a form input.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

func fieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "form", Error: "invalid form submission"}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field: strings.ToLower(fe.Field()),
			Error: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
