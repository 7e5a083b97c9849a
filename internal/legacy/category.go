package legacy

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bulletin-board-api/internal/models"
	"github.com/samber/lo"
)

// ErrUnknownCategory is returned when a source maps to no known board
var ErrUnknownCategory = errors.New("unknown legacy category")

// KnownCategories lists the board names an import run may target
var KnownCategories = lo.Map(models.DefaultCategories, func(c models.Category, _ int) string {
	return c.Name
})

// boardModules maps the module prefix of a legacy export file name
// (module_freeboard.000001.xml) to its destination board.
var boardModules = map[string]string{
	"module_freeboard":    models.CategoryFree,
	"module_story1":       models.CategoryStory,
	"module_galleryboard": models.CategoryPhoto,
	"module_g1":           models.CategoryPhoto,
}

// TagCategory resolves the destination board of an import run. The source is
// either one of the known board names or the path of a legacy export file.
func TagCategory(source string) (string, error) {
	label := strings.TrimSpace(source)
	if lo.Contains(KnownCategories, label) {
		return label, nil
	}

	module, _, _ := strings.Cut(filepath.Base(label), ".")
	if name, ok := boardModules[module]; ok {
		return name, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, source)
}
