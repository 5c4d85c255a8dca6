package gorm

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"

	"github.com/mirepoix/v1/internal/domain/ingredient"
	"github.com/mirepoix/v1/internal/domain/recipe"
	"github.com/mirepoix/v1/internal/domain/tag"
)

// IngredientFromModel converts a GORM model to the domain entity.
func IngredientFromModel(m *IngredientModel) *ingredient.Ingredient {
	allergens := make([]ingredient.Allergen, len(m.Allergens))
	for i, a := range m.Allergens {
		allergens[i] = ingredient.Allergen{ID: a.ID, Name: a.Name}
	}
	return &ingredient.Ingredient{
		ID:        m.ID,
		Name:      m.Name,
		Allergens: allergens,
	}
}

// TagFromModel converts a GORM model to the domain tag.
func TagFromModel(m *TagModel) tag.Tag {
	return tag.Tag{
		ID:       m.ID,
		Name:     m.Name,
		Category: tag.Category(m.Category),
		Color:    m.Color,
	}
}

// RecipeToModel converts a recipe aggregate to its GORM models. Ingredient
// rows travel separately because they carry their own join rows.
func RecipeToModel(r *recipe.Recipe) (*RecipeModel, []RecipeIngredientModel, error) {
	nutrition, err := json.Marshal(r.Nutrition())
	if err != nil {
		return nil, nil, err
	}

	model := &RecipeModel{
		ID:              r.ID(),
		Title:           r.Title(),
		Description:     r.Description(),
		AuthorID:        r.AuthorID(),
		Instructions:    StringSlice(r.Instructions()),
		Nutrition:       JSONField(nutrition),
		PrepTimeMinutes: r.PrepMinutes(),
		CookTimeMinutes: r.CookMinutes(),
		Servings:        r.Servings(),
		IsPublic:        r.IsPublic(),
		ImageURL:        r.ImageURL(),
		CreatedAt:       r.CreatedAt(),
		UpdatedAt:       r.UpdatedAt(),
	}

	lines := make([]RecipeIngredientModel, len(r.Ingredients()))
	for i, line := range r.Ingredients() {
		lines[i] = RecipeIngredientModel{
			RecipeID:     r.ID(),
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
			Unit:         line.Unit,
			Position:     line.Position,
		}
	}
	return model, lines, nil
}

// RecipeFromModel rehydrates a recipe aggregate from persisted state.
func RecipeFromModel(m *RecipeModel) (*recipe.Recipe, error) {
	var nutrition recipe.NutritionBlob
	if len(m.Nutrition) > 0 {
		if err := json.Unmarshal(m.Nutrition, &nutrition); err != nil {
			return nil, err
		}
	}

	rows := append([]RecipeIngredientModel(nil), m.Ingredients...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })

	lines := make([]recipe.IngredientLine, len(rows))
	for i, row := range rows {
		lines[i] = recipe.IngredientLine{
			IngredientID: row.IngredientID,
			Name:         row.Ingredient.Name,
			Quantity:     row.Quantity,
			Unit:         row.Unit,
			Position:     row.Position,
		}
	}

	tagIDs := make([]uuid.UUID, len(m.Tags))
	for i, t := range m.Tags {
		tagIDs[i] = t.ID
	}

	return recipe.Rehydrate(
		m.ID,
		m.Title, m.Description,
		m.AuthorID,
		[]string(m.Instructions),
		m.PrepTimeMinutes, m.CookTimeMinutes, m.Servings,
		lines,
		nutrition,
		tagIDs,
		m.IsPublic,
		m.ImageURL,
		m.CreatedAt, m.UpdatedAt,
	), nil
}
