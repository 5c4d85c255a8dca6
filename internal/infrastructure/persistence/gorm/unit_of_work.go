package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/mirepoix/v1/internal/ports/outbound"
)

// UnitOfWork provides transaction-scoped repository access over one GORM
// handle. The ingestion pipeline runs entirely inside WithinTx so a
// failure at any step rolls back the whole recipe graph.
type UnitOfWork struct {
	db *gorm.DB
	repoSet
}

// repoSet bundles repositories bound to one db handle.
type repoSet struct {
	ingredients *IngredientRepository
	allergens   *AllergenRepository
	recipes     *RecipeRepository
	tags        *TagRepository
}

func newRepoSet(db *gorm.DB) repoSet {
	return repoSet{
		ingredients: NewIngredientRepository(db),
		allergens:   NewAllergenRepository(db),
		recipes:     NewRecipeRepository(db),
		tags:        NewTagRepository(db),
	}
}

// Ingredients returns the ingredient repository
func (s repoSet) Ingredients() outbound.IngredientRepository { return s.ingredients }

// Allergens returns the allergen repository
func (s repoSet) Allergens() outbound.AllergenRepository { return s.allergens }

// Recipes returns the recipe repository
func (s repoSet) Recipes() outbound.RecipeRepository { return s.recipes }

// Tags returns the tag repository
func (s repoSet) Tags() outbound.TagRepository { return s.tags }

// NewUnitOfWork creates a unit of work over the shared connection.
func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{
		db:      db,
		repoSet: newRepoSet(db),
	}
}

// WithinTx runs fn inside a single database transaction. The repositories
// passed to fn are bound to the transaction; if fn returns an error every
// write is rolled back.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, repos outbound.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, newRepoSet(tx))
	})
}
