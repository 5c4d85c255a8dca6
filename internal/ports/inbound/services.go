// Package inbound defines the inbound ports (use case interfaces)
// Following hexagonal architecture principles
package inbound

import (
	"context"

	"github.com/google/uuid"
	"github.com/mirepoix/v1/internal/domain/chat"
)

// RecipeSubmission is the raw inbound payload for recipe ingestion:
// either free text for the language-model parser or an already structured
// record, plus the submitting user and presentation hints.
type RecipeSubmission struct {
	Text     string        `json:"text,omitempty"`
	Record   *RecipeRecord `json:"record,omitempty"`
	AuthorID uuid.UUID     `json:"author_id"`
	ImageURL string        `json:"image_url,omitempty"`
	IsPublic *bool         `json:"is_public,omitempty"`
}

// RecipeRecord is the structured submission shape, bypassing the parser.
type RecipeRecord struct {
	Title                  string             `json:"Title"`
	Description            string             `json:"Description"`
	Instructions           []string           `json:"Instructions"`
	PreparationTimeMinutes int                `json:"PreparationTimeMinutes"`
	CookingTimeMinutes     int                `json:"CookingTimeMinutes"`
	Servings               int                `json:"Servings"`
	Ingredients            []RecordIngredient `json:"Ingredients"`
}

// RecordIngredient is one ingredient of a structured submission.
type RecordIngredient struct {
	Ingredient string `json:"Ingredient"`
	Unit       string `json:"Unit"`
	Quantity   string `json:"Quantity"`
}

// NutrientDTO mirrors recipe.NutrientAmount for transport.
type NutrientDTO struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// NutritionDTO is the stored nutrition blob in transport form.
type NutritionDTO struct {
	Success    bool                   `json:"success"`
	Nutrition  map[string]NutrientDTO `json:"nutrition,omitempty"`
	PerServing bool                   `json:"per_serving,omitempty"`
	Notes      string                 `json:"notes,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// IngredientLineDTO is one ingredient row of an ingested recipe, with the
// allergens resolved for it during ingestion.
type IngredientLineDTO struct {
	IngredientID uuid.UUID `json:"ingredient_id"`
	Name         string    `json:"name"`
	Quantity     string    `json:"quantity"`
	Unit         string    `json:"unit"`
	Allergens    []string  `json:"allergens,omitempty"`
}

// RecipeDTO is the assembled view of an ingested recipe.
type RecipeDTO struct {
	ID           uuid.UUID           `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description,omitempty"`
	AuthorID     uuid.UUID           `json:"author_id"`
	Instructions []string            `json:"instructions"`
	PrepMinutes  int                 `json:"prep_minutes"`
	CookMinutes  int                 `json:"cook_minutes"`
	Servings     int                 `json:"servings"`
	Ingredients  []IngredientLineDTO `json:"ingredients"`
	Nutrition    NutritionDTO        `json:"nutrition"`
	Tags         []string            `json:"tags,omitempty"`
	IsPublic     bool                `json:"is_public"`
	ImageURL     string              `json:"image_url,omitempty"`
}

// IngestionService turns free-form recipe text into a persisted recipe.
type IngestionService interface {
	// IngestRecipe runs the full pipeline: parse, resolve ingredients,
	// detect allergens, extract nutrition, assign tags, and persist the
	// whole graph in one transaction. Non-recipe input is rejected with a
	// typed error; tag and allergen failures do not abort ingestion.
	IngestRecipe(ctx context.Context, sub RecipeSubmission) (*RecipeDTO, error)
	// GetRecipe assembles the stored view of a previously ingested recipe.
	GetRecipe(ctx context.Context, id uuid.UUID) (*RecipeDTO, error)
}

// ChatQuery is one inbound conversational request. ImagePath is set when
// the transport layer stored an uploaded image for classification.
type ChatQuery struct {
	Text      string `json:"text"`
	ImagePath string `json:"-"`
}

// ChatService resolves a conversational query to a structured reply.
type ChatService interface {
	// Respond classifies the query's intent, extracts entities, and
	// composes a reply. It never fails on unrecognized input; unknown
	// intents produce a fallback response.
	Respond(ctx context.Context, q ChatQuery) (*chat.Reply, error)
	// NutritionFor answers a direct nutrition lookup outside the chat flow,
	// using the same fuzzy resolution and formatting as the chat intent.
	NutritionFor(ctx context.Context, foodName string) (*chat.Reply, error)
}
