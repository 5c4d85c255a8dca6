// Package tag defines the canonical recipe tag registry.
// Tags are pre-seeded; the ingestion pipeline resolves language-model tag
// names against this set and silently drops unknown names.
package tag

import (
	"strings"

	"github.com/google/uuid"
)

// Category groups tags for presentation
type Category string

const (
	CategoryCuisine    Category = "cuisine"
	CategoryDiet       Category = "diet"
	CategoryCourse     Category = "course"
	CategoryDifficulty Category = "difficulty"
	CategoryGeneral    Category = "general"
)

// Tag is a categorical label attached to recipes, drawn from the fixed
// registry. Unique by name.
type Tag struct {
	ID       uuid.UUID
	Name     string
	Category Category
	Color    string
}

// NormalizeName canonicalizes a tag name for resolution against the
// registry.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Catalog returns the canonical pre-seeded tag set. IDs are assigned at
// seed time by the repository; entries here carry a zero ID.
func Catalog() []Tag {
	return []Tag{
		// Cuisines
		{Name: "italian", Category: CategoryCuisine, Color: "#2E8540"},
		{Name: "mexican", Category: CategoryCuisine, Color: "#C0392B"},
		{Name: "indian", Category: CategoryCuisine, Color: "#E67E22"},
		{Name: "chinese", Category: CategoryCuisine, Color: "#D35400"},
		{Name: "japanese", Category: CategoryCuisine, Color: "#8E44AD"},
		{Name: "thai", Category: CategoryCuisine, Color: "#16A085"},
		{Name: "french", Category: CategoryCuisine, Color: "#2980B9"},
		{Name: "mediterranean", Category: CategoryCuisine, Color: "#27AE60"},
		{Name: "american", Category: CategoryCuisine, Color: "#34495E"},
		{Name: "middle eastern", Category: CategoryCuisine, Color: "#9B870C"},

		// Diets
		{Name: "vegetarian", Category: CategoryDiet, Color: "#27AE60"},
		{Name: "vegan", Category: CategoryDiet, Color: "#229954"},
		{Name: "gluten-free", Category: CategoryDiet, Color: "#F39C12"},
		{Name: "dairy-free", Category: CategoryDiet, Color: "#3498DB"},
		{Name: "keto", Category: CategoryDiet, Color: "#7D3C98"},
		{Name: "low-carb", Category: CategoryDiet, Color: "#A569BD"},

		// Courses
		{Name: "breakfast", Category: CategoryCourse, Color: "#F5B041"},
		{Name: "lunch", Category: CategoryCourse, Color: "#58D68D"},
		{Name: "dinner", Category: CategoryCourse, Color: "#5DADE2"},
		{Name: "dessert", Category: CategoryCourse, Color: "#EC7063"},
		{Name: "appetizer", Category: CategoryCourse, Color: "#AF7AC5"},
		{Name: "snack", Category: CategoryCourse, Color: "#F8C471"},
		{Name: "side dish", Category: CategoryCourse, Color: "#73C6B6"},

		// Difficulty
		{Name: "easy", Category: CategoryDifficulty, Color: "#2ECC71"},
		{Name: "medium", Category: CategoryDifficulty, Color: "#F1C40F"},
		{Name: "hard", Category: CategoryDifficulty, Color: "#E74C3C"},

		// General
		{Name: "quick", Category: CategoryGeneral, Color: "#1ABC9C"},
		{Name: "healthy", Category: CategoryGeneral, Color: "#2ECC71"},
		{Name: "comfort food", Category: CategoryGeneral, Color: "#E59866"},
		{Name: "spicy", Category: CategoryGeneral, Color: "#CB4335"},
		{Name: "baking", Category: CategoryGeneral, Color: "#AAB7B8"},
		{Name: "one-pot", Category: CategoryGeneral, Color: "#85929E"},
	}
}
