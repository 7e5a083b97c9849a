package legacy

import (
	"errors"
	"testing"

	"github.com/bulletin-board-api/internal/models"
)

func TestTagCategory(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		want    string
		wantErr bool
	}{
		{"board name", models.CategoryFree, models.CategoryFree, false},
		{"board name with spaces", "  " + models.CategoryPhoto + " ", models.CategoryPhoto, false},
		{"every default board", models.CategoryJjuya, models.CategoryJjuya, false},
		{"freeboard export", "module_freeboard.000001.xml", models.CategoryFree, false},
		{"story export with directory", "/data/export/module_story1.000012.xml", models.CategoryStory, false},
		{"gallery export", "module_galleryboard.000003.xml", models.CategoryPhoto, false},
		{"g1 export", "module_g1.000001.xml", models.CategoryPhoto, false},
		{"unknown module", "module_notice.000001.xml", "", true},
		{"unknown name", "free", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TagCategory(tt.source)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCategory) {
					t.Errorf("Expected ErrUnknownCategory, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestKnownCategoriesMatchDefaults(t *testing.T) {
	if len(KnownCategories) != len(models.DefaultCategories) {
		t.Fatalf("Expected %d known categories, got %d", len(models.DefaultCategories), len(KnownCategories))
	}
	for i, c := range models.DefaultCategories {
		if KnownCategories[i] != c.Name {
			t.Errorf("Expected %q at %d, got %q", c.Name, i, KnownCategories[i])
		}
	}
}
