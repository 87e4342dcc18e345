package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"fjacquet/finance-dashboard/internal/fileutils"
	"fjacquet/finance-dashboard/internal/logging"
	"fjacquet/finance-dashboard/internal/models"
)

// categorySeedFile is the YAML layout of a seed file: a top-level
// "categories" key, or a bare list.
type categorySeedFile struct {
	Categories []models.CategoryInput `yaml:"categories"`
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if fileutils.FileExists(filename) {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "findash", filename))
	}

	for _, location := range locations {
		if fileutils.FileExists(location) {
			return location, nil
		}
	}

	return "", os.ErrNotExist
}

// LoadCategorySeed reads and validates the categories of a seed file.
func LoadCategorySeed(path string) ([]models.CategoryInput, error) {
	resolved, err := FindConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("category seed file %s: %w", path, err)
	}

	data, err := fileutils.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("error reading category seed file: %w", err)
	}

	var seed categorySeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil || len(seed.Categories) == 0 {
		// Fallback: a bare list without the top-level key
		var list []models.CategoryInput
		if listErr := yaml.Unmarshal(data, &list); listErr != nil {
			if err == nil {
				err = listErr
			}
			return nil, fmt.Errorf("error parsing category seed file: %w", err)
		}
		seed.Categories = list
	}

	seen := make(map[string]bool, len(seed.Categories))
	for i := range seed.Categories {
		if err := seed.Categories[i].Validate(); err != nil {
			return nil, fmt.Errorf("category seed entry %d: %w", i+1, err)
		}
		if seen[seed.Categories[i].Name] {
			return nil, fmt.Errorf("category seed entry %d: duplicate name %q", i+1, seed.Categories[i].Name)
		}
		seen[seed.Categories[i].Name] = true
	}
	return seed.Categories, nil
}

// SeedCategories inserts seed into an empty category store and returns the
// number created. A store that already holds categories is left untouched.
func SeedCategories(ctx context.Context, cs CategoryStore, seed []models.CategoryInput, logger logging.Logger) (int, error) {
	existing, err := cs.ListCategories(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 || len(seed) == 0 {
		return 0, nil
	}

	created := 0
	for _, in := range seed {
		if _, err := cs.CreateCategory(ctx, in); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return created, err
		}
		created++
	}
	logger.Info("Seeded categories", logging.F(logging.FieldCount, created))
	return created, nil
}

func sortCategories(cs []models.Category) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].Name < cs[j].Name })
}
