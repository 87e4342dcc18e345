// Package validation holds input checks shared by the CLI and the HTTP API.
package validation

import (
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxCategoryNameLength bounds category names.
const MaxCategoryNameLength = 100

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// csvContentTypes are the declared MIME types accepted for statement uploads.
var csvContentTypes = map[string]bool{
	"text/csv":                    true,
	"application/csv":             true,
	"text/comma-separated-values": true,
	"application/vnd.ms-excel":    true,
}

// IsCSVFile reports whether a file is acceptable for import: its name ends in
// .csv or its declared content type is a CSV type.
func IsCSVFile(name, contentType string) bool {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return true
	}
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return csvContentTypes[strings.ToLower(mediaType)]
}

// IsValidOutputFormat checks if the given format is supported.
func IsValidOutputFormat(format string) error {
	switch format {
	case "table", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s. Supported formats are 'table', 'json', 'yaml'", format)
	}
}

// ValidateCategoryName checks that a category name is present and not too long.
func ValidateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return fmt.Errorf("name must be at most %d characters", MaxCategoryNameLength)
	}
	return nil
}

// ValidateHexColor checks an optional #RRGGBB color.
func ValidateHexColor(color *string) error {
	if color == nil || *color == "" {
		return nil
	}
	if !hexColorPattern.MatchString(*color) {
		return fmt.Errorf("color must be a hex color like #1A2B3C, got: %s", *color)
	}
	return nil
}

// ValidateID checks that id is a UUID.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid id %q: %w", id, err)
	}
	return nil
}
