package recipe

import "github.com/google/uuid"

// Value Objects - Immutable objects that describe aspects of the domain

// IngredientLine is one ingredient row of a recipe. Quantity and unit are
// free-form strings; missing values are defaulted by the pipeline to "1"
// and "Unit".
type IngredientLine struct {
	IngredientID uuid.UUID
	Name         string
	Quantity     string
	Unit         string
	Position     int
}

// Validate validates the ingredient line
func (l IngredientLine) Validate() error {
	if l.IngredientID == uuid.Nil {
		return ErrMissingIngredientID
	}
	return nil
}

// DefaultQuantity and DefaultUnit are substituted when the parser returns
// no quantity or unit for an ingredient.
const (
	DefaultQuantity = "1"
	DefaultUnit     = "Unit"
)

// NutrientAmount is one nutrient entry of an extracted nutrition estimate.
type NutrientAmount struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// NutritionBlob is the verbatim output of the nutrition extractor stored on
// a recipe. Either Success is true and Nutrition is non-empty, or Success
// is false and Error describes the failure. The field is never absent on a
// persisted recipe.
type NutritionBlob struct {
	Success    bool                      `json:"success"`
	Nutrition  map[string]NutrientAmount `json:"nutrition,omitempty"`
	PerServing bool                      `json:"per_serving,omitempty"`
	Notes      string                    `json:"notes,omitempty"`
	Error      string                    `json:"error,omitempty"`
}

// NutritionFailure builds the structured error blob stored when extraction
// fails.
func NutritionFailure(reason string) NutritionBlob {
	return NutritionBlob{Success: false, Error: reason}
}
