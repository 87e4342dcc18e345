package validation_test

import (
	"strings"
	"testing"

	"fjacquet/finance-dashboard/internal/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIsCSVFile(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		contentType string
		expected    bool
	}{
		{"csv extension", "statement.csv", "", true},
		{"upper case extension", "STATEMENT.CSV", "application/octet-stream", true},
		{"csv content type", "upload", "text/csv", true},
		{"content type with params", "upload", "text/csv; charset=utf-8", true},
		{"excel csv", "upload.dat", "application/vnd.ms-excel", true},
		{"pdf", "statement.pdf", "application/pdf", false},
		{"no hints", "statement", "", false},
		{"garbage content type", "statement.txt", ";;;", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, validation.IsCSVFile(tt.file, tt.contentType))
		})
	}
}

func TestIsValidOutputFormat(t *testing.T) {
	for _, f := range []string{"table", "json", "yaml"} {
		assert.NoError(t, validation.IsValidOutputFormat(f))
	}
	assert.Error(t, validation.IsValidOutputFormat("xml"))
}

func TestValidateCategoryName(t *testing.T) {
	assert.NoError(t, validation.ValidateCategoryName("Groceries"))
	assert.Error(t, validation.ValidateCategoryName("   "))
	assert.Error(t, validation.ValidateCategoryName(strings.Repeat("x", validation.MaxCategoryNameLength+1)))
	assert.NoError(t, validation.ValidateCategoryName(strings.Repeat("é", validation.MaxCategoryNameLength)))
}

func TestValidateHexColor(t *testing.T) {
	str := func(s string) *string { return &s }

	assert.NoError(t, validation.ValidateHexColor(nil))
	assert.NoError(t, validation.ValidateHexColor(str("")))
	assert.NoError(t, validation.ValidateHexColor(str("#1a2B3c")))
	assert.Error(t, validation.ValidateHexColor(str("1a2b3c")))
	assert.Error(t, validation.ValidateHexColor(str("#12345")))
	assert.Error(t, validation.ValidateHexColor(str("#GGGGGG")))
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, validation.ValidateID(uuid.NewString()))
	assert.Error(t, validation.ValidateID("42"))
}
