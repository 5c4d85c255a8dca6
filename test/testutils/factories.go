// Package testutils provides test data factories for consistent test data
// generation.
package testutils

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/mirepoix/v1/internal/domain/recipe"
	"github.com/mirepoix/v1/internal/ports/inbound"
	"github.com/mirepoix/v1/internal/ports/outbound"
)

// SubmissionBuilder builds recipe submissions with faked but
// reproducible data. A fixed seed keeps generated values stable across
// runs.
type SubmissionBuilder struct {
	faker        *gofakeit.Faker
	title        string
	description  string
	instructions []string
	ingredients  []inbound.RecordIngredient
	authorID     uuid.UUID
	prepMinutes  int
	cookMinutes  int
	servings     int
	isPublic     *bool
}

// NewSubmissionBuilder creates a builder seeded for reproducibility.
func NewSubmissionBuilder(seed int64) *SubmissionBuilder {
	faker := gofakeit.New(seed)
	return &SubmissionBuilder{
		faker:       faker,
		title:       faker.Dinner(),
		description: faker.Sentence(8),
		instructions: []string{
			"Combine all ingredients.",
			"Cook until done.",
		},
		authorID:    uuid.New(),
		prepMinutes: faker.Number(5, 30),
		cookMinutes: faker.Number(10, 90),
		servings:    faker.Number(1, 8),
	}
}

// WithTitle overrides the generated title.
func (b *SubmissionBuilder) WithTitle(title string) *SubmissionBuilder {
	b.title = title
	return b
}

// WithIngredients replaces the ingredient list by name; quantities and
// units are faked.
func (b *SubmissionBuilder) WithIngredients(names ...string) *SubmissionBuilder {
	b.ingredients = make([]inbound.RecordIngredient, len(names))
	for i, name := range names {
		b.ingredients[i] = inbound.RecordIngredient{
			Ingredient: name,
			Quantity:   fmt.Sprintf("%d", b.faker.Number(1, 4)),
			Unit:       "cups",
		}
	}
	return b
}

// WithInstructions replaces the instruction list.
func (b *SubmissionBuilder) WithInstructions(steps ...string) *SubmissionBuilder {
	b.instructions = steps
	return b
}

// WithAuthor sets the submitting user.
func (b *SubmissionBuilder) WithAuthor(id uuid.UUID) *SubmissionBuilder {
	b.authorID = id
	return b
}

// Public marks the submission as publicly visible.
func (b *SubmissionBuilder) Public() *SubmissionBuilder {
	public := true
	b.isPublic = &public
	return b
}

// Build assembles the structured submission.
func (b *SubmissionBuilder) Build() inbound.RecipeSubmission {
	return inbound.RecipeSubmission{
		AuthorID: b.authorID,
		IsPublic: b.isPublic,
		Record: &inbound.RecipeRecord{
			Title:                  b.title,
			Description:            b.description,
			Instructions:           b.instructions,
			PreparationTimeMinutes: b.prepMinutes,
			CookingTimeMinutes:     b.cookMinutes,
			Servings:               b.servings,
			Ingredients:            b.ingredients,
		},
	}
}

// ParsedRecipe fabricates a parser output with the given ingredients,
// for scripting fake parser gateways.
func ParsedRecipe(title string, ingredients ...string) *outbound.ParsedRecipe {
	lines := make([]outbound.ParsedIngredient, len(ingredients))
	for i, name := range ingredients {
		lines[i] = outbound.ParsedIngredient{
			Ingredient: name,
			Quantity:   "1",
			Unit:       "cup",
		}
	}
	return &outbound.ParsedRecipe{
		Title:        title,
		Description:  "generated test recipe",
		Instructions: []string{"Mix.", "Cook."},
		PrepMinutes:  10,
		CookMinutes:  20,
		Servings:     2,
		Ingredients:  lines,
	}
}

// NutritionSuccess fabricates a successful nutrition blob.
func NutritionSuccess(calories float64) recipe.NutritionBlob {
	return recipe.NutritionBlob{
		Success: true,
		Nutrition: map[string]recipe.NutrientAmount{
			"calories": {Amount: calories, Unit: "kcal"},
			"protein":  {Amount: 4.2, Unit: "g"},
		},
	}
}
