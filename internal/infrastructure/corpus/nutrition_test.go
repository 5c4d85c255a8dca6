package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const nutritionCSV = `name,Calories,Protein,Fat,Carbohydrates,Fiber,Sugars
"Carrot, raw",41,0.9,0.2,9.6,2.8,4.7
"Carrot, cooked",35,0.8,0.2,8.2,3.0,3.5
Carrot juice,40,0.9,0.1,9.3,0.8,3.9
"Spinach, raw",23,2.9,0.4,3.6,2.2,0.4
"Egg, whole, raw",143,12.6,9.5,0.7,0,0.4
Apple,52,0.3,0.2,13.8,2.4,10.4
`

func loadNutrition(t *testing.T) *NutritionLookup {
	t.Helper()
	path := writeCorpus(t, "nutrition.csv", nutritionCSV)
	lookup, err := LoadNutritionLookup(path, zap.NewNop())
	require.NoError(t, err)
	return lookup
}

func TestNutritionLookup_Exact(t *testing.T) {
	lookup := loadNutrition(t)

	rec, ok := lookup.Exact("Carrot, raw")
	require.True(t, ok)
	assert.Equal(t, "Carrot, raw", rec.Name)

	calories := rec.Nutrients["calories"]
	require.NotNil(t, calories.Value)
	assert.Equal(t, 41.0, *calories.Value)
	assert.Equal(t, "kcal", calories.Unit)

	// exact mode is case-sensitive
	_, ok = lookup.Exact("carrot, raw")
	assert.False(t, ok)
}

func TestNutritionLookup_Fuzzy_Disambiguation(t *testing.T) {
	lookup := loadNutrition(t)

	result := lookup.Fuzzy("carrot")

	assert.Nil(t, result.Found)
	assert.Equal(t, []string{"Carrot juice", "Carrot, cooked", "Carrot, raw"}, result.Matches)
}

func TestNutritionLookup_Fuzzy_CleanedEqualityIsDefinitive(t *testing.T) {
	lookup := loadNutrition(t)

	result := lookup.Fuzzy("carrot raw")

	require.NotNil(t, result.Found)
	assert.Equal(t, "Carrot, raw", result.Found.Name)
	assert.Empty(t, result.Matches)
}

func TestNutritionLookup_Fuzzy_SingleSurvivor(t *testing.T) {
	lookup := loadNutrition(t)

	result := lookup.Fuzzy("spinach")

	require.NotNil(t, result.Found)
	assert.Equal(t, "Spinach, raw", result.Found.Name)
}

func TestNutritionLookup_Fuzzy_PluralFold(t *testing.T) {
	lookup := loadNutrition(t)

	result := lookup.Fuzzy("eggs")

	require.NotNil(t, result.Found)
	assert.Equal(t, "Egg, whole, raw", result.Found.Name)
}

func TestNutritionLookup_Fuzzy_QueryNoise(t *testing.T) {
	lookup := loadNutrition(t)

	// punctuation and casing are stripped before matching
	result := lookup.Fuzzy("  APPLE!! ")

	require.NotNil(t, result.Found)
	assert.Equal(t, "Apple", result.Found.Name)
}

func TestNutritionLookup_Fuzzy_NotFound(t *testing.T) {
	lookup := loadNutrition(t)

	result := lookup.Fuzzy("dragonfruit")

	assert.Nil(t, result.Found)
	assert.Empty(t, result.Matches)

	assert.Empty(t, lookup.Fuzzy("!!!").Matches)
}

func TestLoadNutritionLookup_NegativeValuesCoercedToNull(t *testing.T) {
	csv := "name,Calories,Zinc\nMystery Food,-5,1.1\n"
	path := writeCorpus(t, "nutrition.csv", csv)
	lookup, err := LoadNutritionLookup(path, zap.NewNop())
	require.NoError(t, err)

	rec, ok := lookup.Exact("Mystery Food")
	require.True(t, ok)

	calories := rec.Nutrients["calories"]
	assert.Nil(t, calories.Value)
	assert.Equal(t, "kcal", calories.Unit)

	// unit table fallback is the empty string
	zinc := rec.Nutrients["zinc"]
	require.NotNil(t, zinc.Value)
	assert.Equal(t, 1.1, *zinc.Value)
	assert.Equal(t, "", zinc.Unit)
}

func TestLoadNutritionLookup_MalformedCorpus(t *testing.T) {
	path := writeCorpus(t, "nutrition.csv", "name,Calories\n")
	_, err := LoadNutritionLookup(path, zap.NewNop())
	assert.Error(t, err)
}
