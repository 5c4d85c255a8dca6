// Package outbound defines the outbound ports (driven adapters interfaces)
// Following hexagonal architecture principles
package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mirepoix/v1/internal/domain/ingredient"
	"github.com/mirepoix/v1/internal/domain/recipe"
	"github.com/mirepoix/v1/internal/domain/tag"
)

// ---------------------------------------------------------------------------
// Corpora (read-only, loaded once at startup, shared without locks)
// ---------------------------------------------------------------------------

// AllergyAnalyzer maps an ingredient name to a set of allergen tags.
// Lookups never fail at runtime; a missing corpus is fatal at load.
//
// Matching is by substring over normalized food names, which is a known
// limitation: a short food name like "egg" also matches "eggplant". The
// whole-word variant offered by implementations tightens this at the cost
// of recall.
type AllergyAnalyzer interface {
	AllergensFor(ingredientName string) []string
}

// Nutrient is one nutrient value of a food record. Value is nil when the
// corpus carried a negative (invalid) measurement.
type Nutrient struct {
	Value *float64
	Unit  string
}

// FoodRecord is a canonical food with its nutrient table.
type FoodRecord struct {
	Name      string
	Nutrients map[string]Nutrient
}

// FuzzyResult is the outcome of a fuzzy nutrition lookup: exactly one of
// Found (definitive match) or Matches (disambiguation candidates) is set;
// both empty means not found.
type FuzzyResult struct {
	Found   *FoodRecord
	Matches []string
}

// NutritionLookup resolves food queries against the nutrition corpus.
type NutritionLookup interface {
	Exact(name string) (*FoodRecord, bool)
	Fuzzy(query string) FuzzyResult
}

// Substitute is a ranked substitution candidate. Scores are normalized so
// the top result scores 1.0.
type Substitute struct {
	Name  string
	Score float64
}

// SubstitutionRecommender suggests replacement ingredients from the
// symmetric co-occurrence table. Never returns an error to callers: an
// unloaded recommender or unknown ingredient yields an empty list.
type SubstitutionRecommender interface {
	Normalize(ingredientText string) string
	SubstitutesFor(ingredientText string, topN int) []Substitute
}

// ---------------------------------------------------------------------------
// NLP parser gateway (external generative model)
// ---------------------------------------------------------------------------

// ParsedIngredient is one ingredient of a parsed recipe. Fields are never
// null: missing values are defaulted by the gateway.
type ParsedIngredient struct {
	Ingredient string `json:"Ingredient"`
	Unit       string `json:"Unit"`
	Quantity   string `json:"Quantity"`
}

// ParsedRecipe is the structured recipe produced from arbitrary prose.
type ParsedRecipe struct {
	Title        string             `json:"Title"`
	Description  string             `json:"Description"`
	Instructions []string           `json:"Instructions"`
	PrepMinutes  int                `json:"PrepMinutes"`
	CookMinutes  int                `json:"CookMinutes"`
	Servings     int                `json:"Servings"`
	Ingredients  []ParsedIngredient `json:"Ingredients"`
}

// ParseOutcome is the typed result union of ParseRecipe. Exactly one of
// Recipe, NotARecipe, or Failure is set. Callers must never crash on a
// well-formed outcome.
type ParseOutcome struct {
	Recipe     *ParsedRecipe
	NotARecipe bool
	Failure    error
}

// TagExtraction is the typed result of ExtractTags. A failed extraction is
// non-fatal to ingestion.
type TagExtraction struct {
	Success   bool     `json:"success"`
	Tags      []string `json:"tags,omitempty"`
	Reasoning string   `json:"reasoning,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// RecipeParser wraps the external generative model. All operations carry a
// bounded deadline via ctx and return structured results for model-side
// failures rather than raw transport errors.
type RecipeParser interface {
	ParseRecipe(ctx context.Context, text string) ParseOutcome
	ExtractNutrition(ctx context.Context, rec *ParsedRecipe) recipe.NutritionBlob
	ExtractTags(ctx context.Context, rec *ParsedRecipe) TagExtraction
}

// ---------------------------------------------------------------------------
// Image classifier
// ---------------------------------------------------------------------------

// Prediction is one ranked classifier output. Confidence is in [0,1].
type Prediction struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// ImageClassifier is the black-box food image classifier. Predictions come
// back sorted by confidence descending; an empty list signals an unknown
// failure.
type ImageClassifier interface {
	Ready() bool
	Predict(ctx context.Context, imagePath string) ([]Prediction, error)
}

// ---------------------------------------------------------------------------
// Query parsing (dependency-parse heuristics abstraction)
// ---------------------------------------------------------------------------

// Token is one parsed token of a chat query.
type Token struct {
	Text  string
	Lemma string
	POS   string // coarse part of speech: NOUN, PROPN, VERB, ADJ, ADP, DET, NUM, CCONJ, PRON, ...
	Tag   string // fine-grained tag where it matters (VBN for past participles)
	Dep   string // dependency relation: dobj, pobj, prep, det, ROOT, ...
	Head  int    // index of the head token
	Index int
}

// NounChunk is a base noun phrase span [Start, End) with its root token
// index.
type NounChunk struct {
	Start int
	End   int
	Root  int
}

// ParsedQuery exposes exactly the parse operations the intent engine
// consumes, so any tokenizer or rule engine can stand in for a full
// dependency parser.
type ParsedQuery interface {
	Tokens() []Token
	NounChunks() []NounChunk
	// Subtree returns the tokens transitively headed by token i, in
	// document order (including i itself).
	Subtree(i int) []Token
}

// QueryParser parses a chat query. Parsing is deterministic and never
// fails on well-formed input.
type QueryParser interface {
	Parse(text string) ParsedQuery
}

// ---------------------------------------------------------------------------
// Caching
// ---------------------------------------------------------------------------

// CacheRepository defines caching operations. Implementations must treat
// failures as soft: callers degrade to the underlying source.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ---------------------------------------------------------------------------
// Persistence
// ---------------------------------------------------------------------------

// IngredientRepository manages canonical ingredients and their allergen
// links.
type IngredientRepository interface {
	// GetOrCreate resolves an ingredient by normalized name, creating it on
	// first reference. The returned ingredient always carries a persisted
	// id. Implementations tolerate concurrent inserts by retrying the read
	// on unique violation.
	GetOrCreate(ctx context.Context, name string) (*ingredient.Ingredient, error)
	FindByName(ctx context.Context, name string) (*ingredient.Ingredient, error)
	// LinkAllergen attaches an allergen to an ingredient; linking an
	// already-linked pair is a no-op.
	LinkAllergen(ctx context.Context, ingredientID, allergenID uuid.UUID) error
}

// AllergenRepository manages allergen tags, created lazily on first
// observation.
type AllergenRepository interface {
	GetOrCreate(ctx context.Context, name string) (*ingredient.Allergen, error)
}

// RecipeRepository persists recipe aggregates.
type RecipeRepository interface {
	Create(ctx context.Context, rec *recipe.Recipe) error
	FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error)
}

// TagCount pairs a tag with its assignment count for popularity ranking.
type TagCount struct {
	Tag         tag.Tag
	Assignments int
}

// TagRepository manages the canonical tag registry and recipe assignments.
type TagRepository interface {
	// Seed inserts the canonical tag set; existing names are left intact.
	Seed(ctx context.Context, tags []tag.Tag) error
	All(ctx context.Context) ([]tag.Tag, error)
	FindByNames(ctx context.Context, names []string) ([]tag.Tag, error)
	// Assign is idempotent per (recipe, tag).
	Assign(ctx context.Context, recipeID uuid.UUID, tagIDs []uuid.UUID) error
	// Replace atomically swaps all assignments for the recipe.
	Replace(ctx context.Context, recipeID uuid.UUID, tagIDs []uuid.UUID) error
	Popular(ctx context.Context, limit int) ([]TagCount, error)
}

// Repositories bundles the repositories sharing one database handle or
// transaction.
type Repositories interface {
	Ingredients() IngredientRepository
	Allergens() AllergenRepository
	Recipes() RecipeRepository
	Tags() TagRepository
}

// UnitOfWork provides transaction-scoped repository access. WithinTx runs
// fn inside a single transaction: if fn returns an error the transaction is
// rolled back and no partial state is visible.
type UnitOfWork interface {
	Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
