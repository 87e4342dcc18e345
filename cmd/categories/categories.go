// Package categories manages user categories from the command line.
package categories

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fjacquet/finance-dashboard/cmd/common"
	"fjacquet/finance-dashboard/internal/container"
	"fjacquet/finance-dashboard/internal/models"
	"fjacquet/finance-dashboard/internal/store"
	"fjacquet/finance-dashboard/internal/validation"
)

var (
	format      string
	name        string
	description string
	colorHex    string
)

// Cmd represents the categories command
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "List, add, update and delete categories",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a category; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdate,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	listCmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json or yaml")
	for _, c := range []*cobra.Command{addCmd, updateCmd} {
		c.Flags().StringVar(&description, "description", "", "description")
		c.Flags().StringVar(&colorHex, "color", "", "hex color such as #FF5733")
	}
	updateCmd.Flags().StringVar(&name, "name", "", "new name")
	Cmd.AddCommand(listCmd, addCmd, updateCmd, deleteCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if err := validation.IsValidOutputFormat(format); err != nil {
		return err
	}
	return common.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		cats, err := c.GetStore().ListCategories(ctx)
		if err != nil {
			return err
		}
		return printCategories(cmd.OutOrStdout(), cats, format)
	})
}

func printCategories(w io.Writer, cats []models.Category, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(cats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal categories: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(map[string][]models.Category{"categories": cats})
		if err != nil {
			return fmt.Errorf("failed to marshal categories: %w", err)
		}
		_, err = w.Write(data)
		return err
	}

	for _, cat := range cats {
		if _, err := fmt.Fprintf(w, "%-36s  %-24s  %-7s  %s\n", cat.ID, cat.Name, deref(cat.Color), deref(cat.Description)); err != nil {
			return err
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// optional returns a pointer to the flag value when it was set, nil otherwise.
func optional(cmd *cobra.Command, flag, value string) *string {
	if !cmd.Flags().Changed(flag) || value == "" {
		return nil
	}
	return &value
}

func runAdd(cmd *cobra.Command, args []string) error {
	in := models.CategoryInput{
		Name:        args[0],
		Description: optional(cmd, "description", description),
		Color:       optional(cmd, "color", colorHex),
	}
	if err := in.Validate(); err != nil {
		return err
	}
	return common.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		created, err := c.GetStore().CreateCategory(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created category %s (%s)\n", created.Name, created.ID)
		return nil
	})
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := validation.ValidateID(id); err != nil {
		return err
	}
	return common.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		current, err := find(ctx, c.GetStore(), id)
		if err != nil {
			return err
		}

		in := models.CategoryInput{Name: current.Name, Description: current.Description, Color: current.Color}
		if cmd.Flags().Changed("name") {
			in.Name = name
		}
		if cmd.Flags().Changed("description") {
			in.Description = optional(cmd, "description", description)
		}
		if cmd.Flags().Changed("color") {
			in.Color = optional(cmd, "color", colorHex)
		}
		if err := in.Validate(); err != nil {
			return err
		}

		updated, err := c.GetStore().UpdateCategory(ctx, id, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated category %s (%s)\n", updated.Name, updated.ID)
		return nil
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := validation.ValidateID(id); err != nil {
		return err
	}
	return common.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		if err := c.GetStore().DeleteCategory(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s\n", id)
		return nil
	})
}

func find(ctx context.Context, cs store.CategoryStore, id string) (models.Category, error) {
	cats, err := cs.ListCategories(ctx)
	if err != nil {
		return models.Category{}, err
	}
	for _, cat := range cats {
		if cat.ID == id {
			return cat, nil
		}
	}
	return models.Category{}, &store.StoreError{Op: "find category", Err: fmt.Errorf("%w: category %s", store.ErrNotFound, id)}
}
