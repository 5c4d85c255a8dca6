// Package recipe contains the core domain logic for recipe management.
// This follows Domain-Driven Design principles with rich domain models.
package recipe

import (
	"time"

	"github.com/google/uuid"
)

// Recipe is the aggregate produced by the ingestion pipeline. It owns an
// ordered list of ingredient lines (unique per ingredient), a nutrition blob
// that is never absent after ingestion, and a set of tag assignments.
type Recipe struct {
	id          uuid.UUID
	title       string
	description string
	authorID    uuid.UUID

	instructions []string
	prepMinutes  int
	cookMinutes  int
	servings     int

	ingredients []IngredientLine
	nutrition   NutritionBlob
	tagIDs      []uuid.UUID

	isPublic bool
	imageURL string

	createdAt time.Time
	updatedAt time.Time
}

// NewRecipe creates a new Recipe with validation
func NewRecipe(title, description string, authorID uuid.UUID) (*Recipe, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Recipe{
		id:          uuid.New(),
		title:       title,
		description: description,
		authorID:    authorID,
		servings:    1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Rehydrate reconstructs a recipe from persisted state. Used only by the
// persistence mappers.
func Rehydrate(
	id uuid.UUID,
	title, description string,
	authorID uuid.UUID,
	instructions []string,
	prepMinutes, cookMinutes, servings int,
	ingredients []IngredientLine,
	nutrition NutritionBlob,
	tagIDs []uuid.UUID,
	isPublic bool,
	imageURL string,
	createdAt, updatedAt time.Time,
) *Recipe {
	return &Recipe{
		id:           id,
		title:        title,
		description:  description,
		authorID:     authorID,
		instructions: instructions,
		prepMinutes:  prepMinutes,
		cookMinutes:  cookMinutes,
		servings:     servings,
		ingredients:  ingredients,
		nutrition:    nutrition,
		tagIDs:       tagIDs,
		isPublic:     isPublic,
		imageURL:     imageURL,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ID returns the recipe's unique identifier
func (r *Recipe) ID() uuid.UUID { return r.id }

// Title returns the recipe's title
func (r *Recipe) Title() string { return r.title }

// Description returns the recipe's description
func (r *Recipe) Description() string { return r.description }

// AuthorID returns the submitting user's id
func (r *Recipe) AuthorID() uuid.UUID { return r.authorID }

// Instructions returns the ordered instruction steps
func (r *Recipe) Instructions() []string { return r.instructions }

// PrepMinutes returns the preparation time in minutes
func (r *Recipe) PrepMinutes() int { return r.prepMinutes }

// CookMinutes returns the cooking time in minutes
func (r *Recipe) CookMinutes() int { return r.cookMinutes }

// Servings returns the number of servings
func (r *Recipe) Servings() int { return r.servings }

// Ingredients returns the ordered ingredient lines
func (r *Recipe) Ingredients() []IngredientLine { return r.ingredients }

// Nutrition returns the nutrition blob stored on the recipe
func (r *Recipe) Nutrition() NutritionBlob { return r.nutrition }

// TagIDs returns the assigned tag ids
func (r *Recipe) TagIDs() []uuid.UUID { return r.tagIDs }

// IsPublic reports whether the recipe is publicly visible
func (r *Recipe) IsPublic() bool { return r.isPublic }

// ImageURL returns the optional recipe image url
func (r *Recipe) ImageURL() string { return r.imageURL }

// CreatedAt returns when the recipe was created
func (r *Recipe) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns when the recipe was last updated
func (r *Recipe) UpdatedAt() time.Time { return r.updatedAt }

// SetInstructions replaces the instruction steps
func (r *Recipe) SetInstructions(steps []string) error {
	if len(steps) == 0 {
		return ErrNoInstructions
	}
	r.instructions = steps
	r.touch()
	return nil
}

// SetTiming sets preparation and cooking time in minutes. Negative values
// are clamped to zero.
func (r *Recipe) SetTiming(prepMinutes, cookMinutes int) {
	if prepMinutes < 0 {
		prepMinutes = 0
	}
	if cookMinutes < 0 {
		cookMinutes = 0
	}
	r.prepMinutes = prepMinutes
	r.cookMinutes = cookMinutes
	r.touch()
}

// SetServings sets the serving count; non-positive values default to 1.
func (r *Recipe) SetServings(servings int) {
	if servings <= 0 {
		servings = 1
	}
	r.servings = servings
	r.touch()
}

// SetPublic sets the public visibility flag
func (r *Recipe) SetPublic(public bool) {
	r.isPublic = public
	r.touch()
}

// SetImageURL sets the optional recipe image url
func (r *Recipe) SetImageURL(url string) {
	r.imageURL = url
	r.touch()
}

// HasIngredient reports whether an ingredient is already listed.
func (r *Recipe) HasIngredient(ingredientID uuid.UUID) bool {
	for _, line := range r.ingredients {
		if line.IngredientID == ingredientID {
			return true
		}
	}
	return false
}

// AddIngredientLine appends an ingredient line. A recipe cannot list the
// same ingredient twice.
func (r *Recipe) AddIngredientLine(line IngredientLine) error {
	if err := line.Validate(); err != nil {
		return err
	}
	if r.HasIngredient(line.IngredientID) {
		return ErrDuplicateIngredient
	}
	line.Position = len(r.ingredients)
	r.ingredients = append(r.ingredients, line)
	r.touch()
	return nil
}

// SetNutrition stores the nutrition blob verbatim. The blob is either the
// successful extractor output or a structured error object; it is never
// absent on a persisted recipe.
func (r *Recipe) SetNutrition(blob NutritionBlob) {
	r.nutrition = blob
	r.touch()
}

// AssignTags sets the recipe's tag assignments, deduplicating ids.
func (r *Recipe) AssignTags(tagIDs []uuid.UUID) {
	seen := make(map[uuid.UUID]bool, len(tagIDs))
	deduped := make([]uuid.UUID, 0, len(tagIDs))
	for _, id := range tagIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		deduped = append(deduped, id)
	}
	r.tagIDs = deduped
	r.touch()
}

// ValidateForPersist ensures the recipe meets the pipeline's commit
// requirements.
func (r *Recipe) ValidateForPersist() error {
	if len(r.ingredients) == 0 {
		return ErrNoIngredients
	}
	if len(r.instructions) == 0 {
		return ErrNoInstructions
	}
	return nil
}

func (r *Recipe) touch() {
	r.updatedAt = time.Now()
}

// validateTitle validates recipe title
func validateTitle(title string) error {
	if len(title) == 0 {
		return ErrTitleRequired
	}
	if len(title) > 200 {
		return ErrTitleTooLong
	}
	return nil
}

// validateDescription validates recipe description
func validateDescription(description string) error {
	if len(description) > 2000 {
		return ErrDescriptionTooLong
	}
	return nil
}
