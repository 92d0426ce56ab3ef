// Package domain defines the versioned course records of the catalog.
//
// Courses are append-only: every edit produces a new record with a higher
// version under a stable course key, and a slug change forks a fresh course
// key starting back at version 1. Nothing is ever updated in place.
package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrSlugInvalid reports a slug that is empty or not [a-z0-9-]+.
	ErrSlugInvalid = errors.New("course slug must match [a-z0-9-]+")
	// ErrTitleEmpty reports a missing course title.
	ErrTitleEmpty = errors.New("course title is required")
	// ErrDisplayOrderInvalid reports a non-positive display order.
	ErrDisplayOrderInvalid = errors.New("course display order must be a positive integer")
	// ErrCreatedByEmpty reports a missing actor identity.
	ErrCreatedByEmpty = errors.New("course created-by actor is required")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Course is one immutable catalog record. Records sharing a CourseKey form a
// version chain 1..N; the highest version per slug is the current record for
// that slug.
type Course struct {
	ID           int64
	Slug         string
	Title        string
	Version      int
	CourseKey    string
	DisplayOrder int
	CreatedBy    string
	CreatedAt    time.Time
}

// CourseInput carries the caller-supplied fields for a new course version.
type CourseInput struct {
	Slug         string `validate:"required,courseslug"`
	Title        string `validate:"required"`
	DisplayOrder int    `validate:"required,gte=1"`
	CreatedBy    string `validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("courseslug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Normalize trims surrounding whitespace from all string fields.
func (in CourseInput) Normalize() CourseInput {
	in.Slug = strings.TrimSpace(in.Slug)
	in.Title = strings.TrimSpace(in.Title)
	in.CreatedBy = strings.TrimSpace(in.CreatedBy)
	return in
}

// Validate checks the input shape and maps violations to sentinel errors.
func (in CourseInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for _, fieldErr := range fieldErrs {
		switch fieldErr.StructField() {
		case "Slug":
			return ErrSlugInvalid
		case "Title":
			return ErrTitleEmpty
		case "DisplayOrder":
			return ErrDisplayOrderInvalid
		case "CreatedBy":
			return ErrCreatedByEmpty
		}
	}
	return err
}
