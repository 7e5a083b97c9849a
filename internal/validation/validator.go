package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bulletin-board-api/internal/models"
	"github.com/samber/lo"
)

// Column limits of the board schema
const (
	MaxCategoryNameLength = 50
	MaxTitleLength        = 300
	MaxAuthorLength       = 100
	MaxCommentLength      = 2000
	MinPasswordLength     = 4
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Errors is a list of validation failures usable as an error
type Errors []ValidationError

func (e Errors) Error() string {
	msgs := lo.Map(e, func(v ValidationError, _ int) string {
		return v.Field + ": " + v.Message
	})
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validator provides validation methods
type Validator struct {
	categories map[string]bool
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{categories: make(map[string]bool)}
}

// SetCategoryCache sets the board names posts may be filed under
func (v *Validator) SetCategoryCache(names []string) {
	for _, name := range names {
		v.categories[name] = true
	}
}

// ValidateCategory validates an admin category creation
func (v *Validator) ValidateCategory(req *models.CreateCategoryRequest) []ValidationError {
	var errors []ValidationError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name is required"})
	} else if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		errors = append(errors, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("name exceeds %d characters", MaxCategoryNameLength),
			Value:   req.Name,
		})
	}

	errors = append(errors, v.ValidateCategoryType(req.Type)...)
	return errors
}

// ValidateCategoryType checks the board type tag
func (v *Validator) ValidateCategoryType(categoryType models.CategoryType) []ValidationError {
	if categoryType == "" {
		return []ValidationError{{Field: "type", Message: "type is required"}}
	}
	if !models.ValidCategoryTypes[categoryType] {
		return []ValidationError{{
			Field:   "type",
			Message: "invalid type, must be one of: text, photo",
			Value:   categoryType,
		}}
	}
	return nil
}

// ValidatePost validates an interactively authored post
func (v *Validator) ValidatePost(req *models.CreatePostRequest) []ValidationError {
	var errors []ValidationError

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "title is required"})
	} else if utf8.RuneCountInString(title) > MaxTitleLength {
		errors = append(errors, ValidationError{Field: "title", Message: fmt.Sprintf("title exceeds %d characters", MaxTitleLength)})
	}

	errors = append(errors, validateAuthor(req.Author)...)

	if strings.TrimSpace(req.Content) == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "content is required"})
	}

	if req.Category == "" {
		errors = append(errors, ValidationError{Field: "category", Message: "category is required"})
	} else if len(v.categories) > 0 && !v.categories[req.Category] {
		errors = append(errors, ValidationError{Field: "category", Message: "unknown category", Value: req.Category})
	}

	if req.Password != "" && utf8.RuneCountInString(req.Password) < MinPasswordLength {
		errors = append(errors, ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength),
		})
	}

	return errors
}

// ValidateComment validates an interactively authored comment
func (v *Validator) ValidateComment(req *models.CreateCommentRequest) []ValidationError {
	errors := validateAuthor(req.Author)

	content := strings.TrimSpace(req.Content)
	if content == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "content is required"})
	} else if n := utf8.RuneCountInString(content); n > MaxCommentLength {
		errors = append(errors, ValidationError{
			Field:   "content",
			Message: fmt.Sprintf("content exceeds maximum of %d characters (has %d)", MaxCommentLength, n),
		})
	}

	return errors
}

// ValidateImportFile checks an uploaded legacy export before it is stored
func (v *Validator) ValidateImportFile(filename string, size, maxSize int64) []ValidationError {
	var errors []ValidationError

	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".xml" {
		errors = append(errors, ValidationError{Field: "file", Message: "legacy export must be an .xml file", Value: filename})
	}
	if size <= 0 {
		errors = append(errors, ValidationError{Field: "file", Message: "file is empty"})
	} else if maxSize > 0 && size > maxSize {
		errors = append(errors, ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("file too large, max size is %d MB", maxSize/(1024*1024)),
		})
	}

	return errors
}

func validateAuthor(author string) []ValidationError {
	author = strings.TrimSpace(author)
	if author == "" {
		return []ValidationError{{Field: "author", Message: "author is required"}}
	}
	if utf8.RuneCountInString(author) > MaxAuthorLength {
		return []ValidationError{{Field: "author", Message: fmt.Sprintf("author exceeds %d characters", MaxAuthorLength)}}
	}
	return nil
}
