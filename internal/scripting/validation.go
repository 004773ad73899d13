package scripting

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fishblog/fishblog/internal/canvas"
)

// Limits for sketch scripts.
const (
	MaxTitleLen = 128
	MaxPenOps   = 100000
	MaxPenWidth = 200.0
	ScriptExt   = ".lua"
)

// ValidateInput performs input checks for sketch scripts.
type ValidateInput struct{}

// ValidateString checks string length and encoding.
func (v *ValidateInput) ValidateString(value, fieldName string, maxLen int) error {
	if !utf8.ValidString(value) {
		return fmt.Errorf("%s contains invalid UTF-8", fieldName)
	}

	if utf8.RuneCountInString(value) > maxLen {
		return fmt.Errorf("%s too long (max %d characters)", fieldName, maxLen)
	}

	return nil
}

// ValidateTitle checks a drawing message title. Emptiness is left to the
// command layer, which reports it as a validation failure.
func (v *ValidateInput) ValidateTitle(title string) error {
	if err := v.ValidateString(title, "title", MaxTitleLen); err != nil {
		return err
	}

	for _, r := range title {
		if r < 32 || r == 127 {
			return fmt.Errorf("title contains control characters")
		}
	}

	return nil
}

// ValidateCoordinate rejects pen positions the surface cannot draw: NaN,
// infinities and anything beyond canvas.MaxCoordinate.
func (v *ValidateInput) ValidateCoordinate(name string, c float64) error {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return fmt.Errorf("%s must be a finite number", name)
	}
	if math.Abs(c) > canvas.MaxCoordinate {
		return fmt.Errorf("%s must be within ±%d", name, canvas.MaxCoordinate)
	}
	return nil
}

// ValidateWidth checks a pen width.
func (v *ValidateInput) ValidateWidth(w float64) error {
	if err := v.ValidateCoordinate("width", w); err != nil {
		return err
	}
	if w <= 0 || w > MaxPenWidth {
		return fmt.Errorf("width must be in (0, %g]", MaxPenWidth)
	}
	return nil
}

// ValidateScriptPath checks that path names a Lua file.
func (v *ValidateInput) ValidateScriptPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("script path is empty")
	}
	if !strings.EqualFold(filepath.Ext(path), ScriptExt) {
		return fmt.Errorf("script %s must have a %s extension", path, ScriptExt)
	}
	return nil
}
