package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mirepoix/v1/internal/domain/recipe"
	apperrors "github.com/mirepoix/v1/pkg/errors"
)

// RecipeRepository implements the recipe repository interface using GORM
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create persists a recipe aggregate with its ingredient rows.
func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	model, lines, err := RecipeToModel(rec)
	if err != nil {
		return apperrors.NewDatabaseError("serialize recipe", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.NewDatabaseError("create recipe", err)
	}
	if len(lines) > 0 {
		if err := r.db.WithContext(ctx).Create(&lines).Error; err != nil {
			return apperrors.NewDatabaseError("create recipe ingredients", err)
		}
	}
	return nil
}

// FindByID loads a recipe aggregate with its ingredient rows and tags.
func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	var model RecipeModel
	err := r.db.WithContext(ctx).
		Preload("Ingredients").
		Preload("Ingredients.Ingredient").
		Preload("Tags").
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewRecipeNotFoundError(id.String())
		}
		return nil, apperrors.NewDatabaseError("find recipe", err)
	}

	rec, err := RecipeFromModel(&model)
	if err != nil {
		return nil, apperrors.NewDatabaseError("deserialize recipe", err)
	}
	return rec, nil
}
