package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/avlund/tend/internal/friend"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Manage categories",
	RunE:  runCategoriesList,
}

var categoriesAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesAdd,
}

var categoriesRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove a category (friends are detached, not deleted)",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesRemove,
}

var (
	categoryColor string
	categoryIcon  string
)

func runCategoriesList(cmd *cobra.Command, args []string) error {
	_, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SeedDefaultCategories(); err != nil {
		return err
	}

	cats, err := db.ListCategories()
	if err != nil {
		return err
	}
	for _, c := range cats {
		marker := ""
		if c.IsDefault {
			marker = " (default)"
		}
		fmt.Printf("%3d  %s%s\n", c.ID, c.Name, marker)
	}
	return nil
}

func runCategoriesAdd(cmd *cobra.Command, args []string) error {
	_, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	c := &friend.Category{Name: args[0], Icon: categoryIcon, ColorHex: categoryColor}
	if err := db.CreateCategory(c); err != nil {
		return err
	}
	fmt.Printf("Added category %s (id %d)\n", c.Name, c.ID)
	return nil
}

func runCategoriesRemove(cmd *cobra.Command, args []string) error {
	_, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("category id %q: %w", args[0], err)
	}
	if err := db.DeleteCategory(id); err != nil {
		return err
	}
	fmt.Println("Removed category; tagged friends were detached")
	return nil
}

func init() {
	categoriesAddCmd.Flags().StringVar(&categoryColor, "color", "808080", "Hex color")
	categoriesAddCmd.Flags().StringVar(&categoryIcon, "icon", "tag", "Icon name")

	categoriesCmd.AddCommand(categoriesAddCmd)
	categoriesCmd.AddCommand(categoriesRemoveCmd)
}
