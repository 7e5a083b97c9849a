package legacy

import (
	"strings"
	"time"

	"github.com/bulletin-board-api/internal/models"
)

// RegDateLayout is the regdate format of the legacy export (YYYYMMDDHHMMSS)
const RegDateLayout = "20060102150405"

// FormatRegDate converts a legacy regdate into the board display format.
// Values that do not match the legacy layout are returned unchanged.
func FormatRegDate(regDate string) string {
	t, err := time.Parse(RegDateLayout, strings.TrimSpace(regDate))
	if err != nil {
		return regDate
	}
	return t.Format(models.DisplayDateLayout)
}
