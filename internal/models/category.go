package models

import (
	"strings"
	"time"

	"fjacquet/finance-dashboard/internal/validation"
)

// Category is a user-managed label with its own lifecycle.
type Category struct {
	ID          string    `json:"id" yaml:"id,omitempty"`
	Name        string    `json:"name" yaml:"name"`
	Description *string   `json:"description" yaml:"description,omitempty"`
	Color       *string   `json:"color" yaml:"color,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"-"`
}

// CategoryInput is the writable part of a category.
type CategoryInput struct {
	Name        string  `json:"name" yaml:"name"`
	Description *string `json:"description" yaml:"description,omitempty"`
	Color       *string `json:"color" yaml:"color,omitempty"`
}

// Validate checks the name and color, trims the name in place and turns a
// blank description or color into nil.
func (in *CategoryInput) Validate() error {
	if err := validation.ValidateCategoryName(in.Name); err != nil {
		return err
	}
	in.Description = nilIfBlank(in.Description)
	in.Color = nilIfBlank(in.Color)
	if err := validation.ValidateHexColor(in.Color); err != nil {
		return err
	}
	in.Name = strings.TrimSpace(in.Name)
	return nil
}

func nilIfBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// Apply copies the input onto the category.
func (in CategoryInput) Apply(c *Category) {
	c.Name = in.Name
	c.Description = in.Description
	c.Color = in.Color
}
