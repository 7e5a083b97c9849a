package models

// CategoryType controls how the presentation layer renders a board
type CategoryType string

const (
	CategoryTypeText  CategoryType = "text"
	CategoryTypePhoto CategoryType = "photo"
)

// ValidCategoryTypes defines allowed category types
var ValidCategoryTypes = map[CategoryType]bool{
	CategoryTypeText:  true,
	CategoryTypePhoto: true,
}

// Category is a board. Posts reference it by ID and keep its name for display.
type Category struct {
	ID          int64        `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Type        CategoryType `json:"type" db:"type"`
	Description string       `json:"description,omitempty" db:"description"`
}

// IsGallery reports whether the board renders as an image grid
func (c *Category) IsGallery() bool {
	return c.Type == CategoryTypePhoto
}

// Default board names carried over from the legacy installation
const (
	CategoryFree  = "자유게시판"
	CategoryStory = "이야기게시판"
	CategoryPhoto = "사진게시판"
	CategoryDraft = "습작게시판"
	CategoryJjuya = "쭈야랑게시판"
)

// DefaultCategories are seeded on startup, in display order
var DefaultCategories = []Category{
	{Name: CategoryFree, Type: CategoryTypeText},
	{Name: CategoryPhoto, Type: CategoryTypePhoto},
	{Name: CategoryStory, Type: CategoryTypeText},
	{Name: CategoryDraft, Type: CategoryTypePhoto},
	{Name: CategoryJjuya, Type: CategoryTypePhoto},
}

// CreateCategoryRequest is the body of an admin category creation
type CreateCategoryRequest struct {
	Name        string       `json:"name"`
	Type        CategoryType `json:"type"`
	Description string       `json:"description,omitempty"`
}
