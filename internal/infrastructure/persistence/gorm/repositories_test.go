package gorm

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mirepoix/v1/internal/domain/recipe"
	"github.com/mirepoix/v1/internal/domain/tag"
	"github.com/mirepoix/v1/internal/ports/outbound"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the in-memory database alive
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(AllModels()...))
	return db
}

func TestIngredientRepository_GetOrCreate(t *testing.T) {
	db := openTestDB(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, "  Olive Oil ")
	require.NoError(t, err)
	assert.Equal(t, "olive oil", first.Name)
	assert.NotEqual(t, uuid.Nil, first.ID)

	// second reference resolves to the same row
	second, err := repo.GetOrCreate(ctx, "olive oil")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&IngredientModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIngredientRepository_GetOrCreate_EmptyName(t *testing.T) {
	repo := NewIngredientRepository(openTestDB(t))

	_, err := repo.GetOrCreate(context.Background(), "   ")
	assert.Error(t, err)
}

func TestIngredientRepository_LinkAllergen_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ingredients := NewIngredientRepository(db)
	allergens := NewAllergenRepository(db)
	ctx := context.Background()

	ing, err := ingredients.GetOrCreate(ctx, "milk")
	require.NoError(t, err)
	dairy, err := allergens.GetOrCreate(ctx, "dairy")
	require.NoError(t, err)

	require.NoError(t, ingredients.LinkAllergen(ctx, ing.ID, dairy.ID))
	require.NoError(t, ingredients.LinkAllergen(ctx, ing.ID, dairy.ID))

	found, err := ingredients.FindByName(ctx, "milk")
	require.NoError(t, err)
	require.Len(t, found.Allergens, 1)
	assert.Equal(t, "dairy", found.Allergens[0].Name)
}

func TestAllergenRepository_GetOrCreate(t *testing.T) {
	db := openTestDB(t)
	repo := NewAllergenRepository(db)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, "gluten")
	require.NoError(t, err)
	second, err := repo.GetOrCreate(ctx, "gluten")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func buildRecipe(t *testing.T, db *gorm.DB, title string) *recipe.Recipe {
	t.Helper()
	ctx := context.Background()
	ingredients := NewIngredientRepository(db)

	rec, err := recipe.NewRecipe(title, "test recipe", uuid.New())
	require.NoError(t, err)
	require.NoError(t, rec.SetInstructions([]string{"mix", "bake"}))
	rec.SetTiming(10, 20)
	rec.SetServings(4)

	for i, name := range []string{"flour", "milk"} {
		ing, err := ingredients.GetOrCreate(ctx, name)
		require.NoError(t, err)
		require.NoError(t, rec.AddIngredientLine(recipe.IngredientLine{
			IngredientID: ing.ID,
			Name:         ing.Name,
			Quantity:     fmt.Sprintf("%d", i+1),
			Unit:         "cups",
		}))
	}
	rec.SetNutrition(recipe.NutritionBlob{
		Success:   true,
		Nutrition: map[string]recipe.NutrientAmount{"calories": {Amount: 250, Unit: "kcal"}},
	})
	return rec
}

func TestRecipeRepository_CreateAndFindByID(t *testing.T) {
	db := openTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	rec := buildRecipe(t, db, "Pancakes")
	require.NoError(t, repo.Create(ctx, rec))

	loaded, err := repo.FindByID(ctx, rec.ID())
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", loaded.Title())
	assert.Equal(t, []string{"mix", "bake"}, loaded.Instructions())
	assert.Equal(t, 10, loaded.PrepMinutes())
	assert.Equal(t, 4, loaded.Servings())

	require.Len(t, loaded.Ingredients(), 2)
	assert.Equal(t, "flour", loaded.Ingredients()[0].Name)
	assert.Equal(t, "milk", loaded.Ingredients()[1].Name)

	assert.True(t, loaded.Nutrition().Success)
	assert.Equal(t, 250.0, loaded.Nutrition().Nutrition["calories"].Amount)
}

func TestRecipeRepository_FindByID_NotFound(t *testing.T) {
	repo := NewRecipeRepository(openTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestRecipeRepository_DuplicateIngredientRowRejected(t *testing.T) {
	db := openTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	rec := buildRecipe(t, db, "Duped")
	require.NoError(t, repo.Create(ctx, rec))

	// schema-level uniqueness backs the pipeline's dedup
	dup := RecipeIngredientModel{
		RecipeID:     rec.ID(),
		IngredientID: rec.Ingredients()[0].IngredientID,
		Quantity:     "9",
		Unit:         "cups",
	}
	assert.Error(t, db.Create(&dup).Error)
}

func TestTagRepository_SeedIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Seed(ctx, tag.Catalog()))
	require.NoError(t, repo.Seed(ctx, tag.Catalog()))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(tag.Catalog()))
}

func TestTagRepository_FindByNames_DropsUnknown(t *testing.T) {
	db := openTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Seed(ctx, tag.Catalog()))

	tags, err := repo.FindByNames(ctx, []string{"Italian", "dinner", "astronaut food"})
	require.NoError(t, err)

	names := make([]string, len(tags))
	for i, tg := range tags {
		names[i] = tg.Name
	}
	assert.ElementsMatch(t, []string{"italian", "dinner"}, names)
}

func TestTagRepository_AssignAndReplace(t *testing.T) {
	db := openTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Seed(ctx, tag.Catalog()))

	tags, err := repo.FindByNames(ctx, []string{"italian", "dinner", "easy"})
	require.NoError(t, err)
	require.Len(t, tags, 3)

	recipeID := uuid.New()
	ids := []uuid.UUID{tags[0].ID, tags[1].ID}

	require.NoError(t, repo.Assign(ctx, recipeID, ids))
	require.NoError(t, repo.Assign(ctx, recipeID, ids))

	var count int64
	require.NoError(t, db.Model(&RecipeTagModel{}).Where("recipe_id = ?", recipeID).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	require.NoError(t, repo.Replace(ctx, recipeID, []uuid.UUID{tags[2].ID}))
	var links []RecipeTagModel
	require.NoError(t, db.Where("recipe_id = ?", recipeID).Find(&links).Error)
	require.Len(t, links, 1)
	assert.Equal(t, tags[2].ID, links[0].TagID)
}

func TestTagRepository_Popular(t *testing.T) {
	db := openTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Seed(ctx, tag.Catalog()))

	tags, err := repo.FindByNames(ctx, []string{"italian", "dinner"})
	require.NoError(t, err)
	require.Len(t, tags, 2)

	var italian, dinner tag.Tag
	for _, tg := range tags {
		if tg.Name == "italian" {
			italian = tg
		} else {
			dinner = tg
		}
	}

	require.NoError(t, repo.Assign(ctx, uuid.New(), []uuid.UUID{italian.ID, dinner.ID}))
	require.NoError(t, repo.Assign(ctx, uuid.New(), []uuid.UUID{italian.ID}))

	popular, err := repo.Popular(ctx, 2)
	require.NoError(t, err)
	require.Len(t, popular, 2)

	assert.Equal(t, "italian", popular[0].Tag.Name)
	assert.Equal(t, 2, popular[0].Assignments)
	assert.Equal(t, "dinner", popular[1].Tag.Name)
	assert.Equal(t, 1, popular[1].Assignments)
}

func TestUnitOfWork_RollbackOnError(t *testing.T) {
	db := openTestDB(t)
	uow := NewUnitOfWork(db)
	ctx := context.Background()

	err := uow.WithinTx(ctx, func(ctx context.Context, repos outbound.Repositories) error {
		if _, err := repos.Ingredients().GetOrCreate(ctx, "saffron"); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&IngredientModel{}).Count(&count).Error)
	assert.Equal(t, int64(0), count, "rollback discards partial writes")
}

func TestUnitOfWork_CommitOnSuccess(t *testing.T) {
	db := openTestDB(t)
	uow := NewUnitOfWork(db)
	ctx := context.Background()

	err := uow.WithinTx(ctx, func(ctx context.Context, repos outbound.Repositories) error {
		_, err := repos.Ingredients().GetOrCreate(ctx, "saffron")
		return err
	})
	require.NoError(t, err)

	found, err := uow.Ingredients().FindByName(ctx, "saffron")
	require.NoError(t, err)
	assert.Equal(t, "saffron", found.Name)
}
