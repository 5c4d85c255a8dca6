package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mirepoix/v1/internal/domain/ingredient"
	apperrors "github.com/mirepoix/v1/pkg/errors"
)

// IngredientRepository implements the ingredient repository interface using GORM
type IngredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates a new ingredient repository
func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

// GetOrCreate resolves an ingredient by normalized name, creating it on
// first reference. A unique-violation from a concurrent insert is settled
// by retrying the read.
func (r *IngredientRepository) GetOrCreate(ctx context.Context, name string) (*ingredient.Ingredient, error) {
	normalized := ingredient.NormalizeName(name)
	if normalized == "" {
		return nil, ingredient.ErrEmptyName
	}

	found, err := r.findModel(ctx, normalized)
	if err == nil {
		return IngredientFromModel(found), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewDatabaseError("find ingredient", err)
	}

	model := &IngredientModel{Name: normalized}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			found, rerr := r.findModel(ctx, normalized)
			if rerr != nil {
				return nil, apperrors.NewDatabaseError("reread ingredient after duplicate", rerr)
			}
			return IngredientFromModel(found), nil
		}
		return nil, apperrors.NewDatabaseError("create ingredient", err)
	}

	return IngredientFromModel(model), nil
}

// FindByName finds an ingredient by normalized name with its allergens.
func (r *IngredientRepository) FindByName(ctx context.Context, name string) (*ingredient.Ingredient, error) {
	model, err := r.findModel(ctx, ingredient.NormalizeName(name))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("ingredient")
		}
		return nil, apperrors.NewDatabaseError("find ingredient", err)
	}
	return IngredientFromModel(model), nil
}

// LinkAllergen attaches an allergen to an ingredient. Linking an existing
// pair is a no-op.
func (r *IngredientRepository) LinkAllergen(ctx context.Context, ingredientID, allergenID uuid.UUID) error {
	link := IngredientAllergenModel{
		IngredientID: ingredientID,
		AllergenID:   allergenID,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.NewDatabaseError("link allergen", err)
	}
	return nil
}

func (r *IngredientRepository) findModel(ctx context.Context, name string) (*IngredientModel, error) {
	var model IngredientModel
	err := r.db.WithContext(ctx).
		Preload("Allergens").
		First(&model, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &model, nil
}

// AllergenRepository implements the allergen repository interface using GORM
type AllergenRepository struct {
	db *gorm.DB
}

// NewAllergenRepository creates a new allergen repository
func NewAllergenRepository(db *gorm.DB) *AllergenRepository {
	return &AllergenRepository{db: db}
}

// GetOrCreate resolves an allergen by name, creating it when first
// observed. Concurrent inserts settle by retrying the read.
func (r *AllergenRepository) GetOrCreate(ctx context.Context, name string) (*ingredient.Allergen, error) {
	var model AllergenModel
	err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error
	if err == nil {
		return &ingredient.Allergen{ID: model.ID, Name: model.Name}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewDatabaseError("find allergen", err)
	}

	model = AllergenModel{Name: name}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var again AllergenModel
			if rerr := r.db.WithContext(ctx).First(&again, "name = ?", name).Error; rerr != nil {
				return nil, apperrors.NewDatabaseError("reread allergen after duplicate", rerr)
			}
			return &ingredient.Allergen{ID: again.ID, Name: again.Name}, nil
		}
		return nil, apperrors.NewDatabaseError("create allergen", err)
	}

	return &ingredient.Allergen{ID: model.ID, Name: model.Name}, nil
}
