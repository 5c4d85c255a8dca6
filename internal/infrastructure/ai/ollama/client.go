// Package ollama routes recipe parsing, nutrition extraction, and tag
// extraction to a local Ollama instance. Every operation holds the model
// to a strict JSON contract and converts transport or decode failures into
// structured results so callers never branch on raw errors.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mirepoix/v1/internal/domain/recipe"
	"github.com/mirepoix/v1/internal/domain/tag"
	"github.com/mirepoix/v1/internal/ports/outbound"
	"github.com/mirepoix/v1/pkg/errors"
)

// notARecipeSentinel is the error value the model is instructed to return
// when the input text is not a cooking recipe.
const notARecipeSentinel = "not-a-recipe"

// Client implements outbound.RecipeParser against the Ollama chat API.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
	timeout time.Duration
}

// Config holds the Ollama connection settings.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewClient creates a new Ollama client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.2:3b"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger.Info("Ollama client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout))

	return &Client{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger:  logger.Named("ollama-client"),
		timeout: cfg.Timeout,
	}
}

// Ollama API structures
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string                 `json:"model"`
	Messages []ChatMessage          `json:"messages"`
	Stream   bool                   `json:"stream"`
	Format   string                 `json:"format,omitempty"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type ChatResponse struct {
	Model   string      `json:"model"`
	Message ChatMessage `json:"message"`
	Done    bool        `json:"done"`
}

const parseRecipeSystemPrompt = `You are a recipe parser. Convert the user's text into a recipe.

CRITICAL: Respond with ONLY a valid JSON object in this exact format:
{
  "Title": "Recipe Name",
  "Description": "Brief description",
  "Instructions": ["Step 1", "Step 2"],
  "PrepMinutes": 15,
  "CookMinutes": 25,
  "Servings": 4,
  "Ingredients": [
    {"Ingredient": "flour", "Unit": "cups", "Quantity": "2"}
  ]
}

If the text is not a cooking recipe, respond with exactly:
{"error": "not-a-recipe"}

Remember: Respond with ONLY valid JSON. No additional text, explanations, or formatting.`

const extractNutritionSystemPrompt = `You are a nutrition analyst. Estimate the nutrition of the recipe.

CRITICAL: Respond with ONLY a valid JSON object in this exact format:
{
  "success": true,
  "nutrition": {
    "calories": {"amount": 350, "unit": "kcal"},
    "protein": {"amount": 20.0, "unit": "g"}
  },
  "per_serving": true,
  "notes": "short caveats"
}

Remember: Respond with ONLY valid JSON. No additional text.`

const extractTagsSystemPrompt = `You are a recipe classifier. Pick tags for the recipe from this list only:
%s

CRITICAL: Respond with ONLY a valid JSON object in this exact format:
{"success": true, "tags": ["italian", "dinner"], "reasoning": "short why"}

Remember: Respond with ONLY valid JSON. No additional text.`

// sentinelEnvelope detects the not-a-recipe error object.
type sentinelEnvelope struct {
	Error string `json:"error"`
}

// ParseRecipe converts free text into a structured recipe. The result is a
// union: a parsed recipe, a not-a-recipe rejection, or a transport-level
// failure.
func (c *Client) ParseRecipe(ctx context.Context, text string) outbound.ParseOutcome {
	raw, err := c.chat(ctx, parseRecipeSystemPrompt, text)
	if err != nil {
		return outbound.ParseOutcome{Failure: errors.NewParserFailureError("parse_recipe", err)}
	}

	payload, err := extractJSON(raw)
	if err != nil {
		return outbound.ParseOutcome{Failure: errors.NewParserFailureError("parse_recipe", err)}
	}

	var sentinel sentinelEnvelope
	if err := json.Unmarshal(payload, &sentinel); err == nil && sentinel.Error == notARecipeSentinel {
		c.logger.Info("model rejected input as not a recipe")
		return outbound.ParseOutcome{NotARecipe: true}
	}

	var parsed outbound.ParsedRecipe
	if err := json.Unmarshal(payload, &parsed); err != nil {
		c.logger.Error("failed to decode parsed recipe",
			zap.Error(err),
			zap.String("response", truncate(string(payload), 500)))
		return outbound.ParseOutcome{Failure: errors.NewParserFailureError("parse_recipe", err)}
	}

	applyRecipeDefaults(&parsed)
	c.logger.Info("recipe parsed",
		zap.String("title", parsed.Title),
		zap.Int("ingredients", len(parsed.Ingredients)))
	return outbound.ParseOutcome{Recipe: &parsed}
}

// ExtractNutrition estimates the nutrition for a parsed recipe. Failures
// come back as a structured error blob, never as a Go error; ingestion
// stores the blob either way.
func (c *Client) ExtractNutrition(ctx context.Context, rec *outbound.ParsedRecipe) recipe.NutritionBlob {
	raw, err := c.chat(ctx, extractNutritionSystemPrompt, describeRecipe(rec))
	if err != nil {
		c.logger.Warn("nutrition extraction failed", zap.Error(err))
		return recipe.NutritionFailure("nutrition extraction failed: " + err.Error())
	}

	payload, err := extractJSON(raw)
	if err != nil {
		return recipe.NutritionFailure("nutrition extraction returned no JSON")
	}

	var blob recipe.NutritionBlob
	if err := json.Unmarshal(payload, &blob); err != nil {
		c.logger.Warn("failed to decode nutrition blob", zap.Error(err))
		return recipe.NutritionFailure("nutrition extraction returned malformed JSON")
	}
	if blob.Success && len(blob.Nutrition) == 0 {
		return recipe.NutritionFailure("nutrition extraction returned an empty nutrient map")
	}
	return blob
}

// ExtractTags asks the model to classify the recipe against the canonical
// tag names. A failed call is non-fatal; the caller may persist with zero
// tags.
func (c *Client) ExtractTags(ctx context.Context, rec *outbound.ParsedRecipe) outbound.TagExtraction {
	system := fmt.Sprintf(extractTagsSystemPrompt, strings.Join(canonicalTagNames(), ", "))
	raw, err := c.chat(ctx, system, describeRecipe(rec))
	if err != nil {
		c.logger.Warn("tag extraction failed", zap.Error(err))
		return outbound.TagExtraction{Success: false, Error: "tag extraction failed: " + err.Error()}
	}

	payload, err := extractJSON(raw)
	if err != nil {
		return outbound.TagExtraction{Success: false, Error: "tag extraction returned no JSON"}
	}

	var extraction outbound.TagExtraction
	if err := json.Unmarshal(payload, &extraction); err != nil {
		c.logger.Warn("failed to decode tag extraction", zap.Error(err))
		return outbound.TagExtraction{Success: false, Error: "tag extraction returned malformed JSON"}
	}
	return extraction
}

// chat performs one round trip against the Ollama chat API.
func (c *Client) chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	endpoint := c.baseURL + "/api/chat"

	reqBody := ChatRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: false,
		Format: "json",
		Options: map[string]interface{}{
			"temperature": 0.2,
			"num_predict": 2000,
			"num_ctx":     4096,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !chatResp.Done {
		return "", fmt.Errorf("incomplete response from Ollama")
	}
	if strings.TrimSpace(chatResp.Message.Content) == "" {
		return "", fmt.Errorf("empty response from Ollama")
	}

	return chatResp.Message.Content, nil
}

// extractJSON finds the JSON object in a model response, tolerating fenced
// code blocks and stray prose around the braces.
func extractJSON(response string) ([]byte, error) {
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no valid JSON found in response")
	}
	return []byte(response[start : end+1]), nil
}

// applyRecipeDefaults fills the fields the contract guarantees non-null.
// Quantity and unit defaults belong to the ingestion pipeline, not here.
func applyRecipeDefaults(rec *outbound.ParsedRecipe) {
	if strings.TrimSpace(rec.Title) == "" {
		rec.Title = "Untitled Parsed Recipe"
	}
	if rec.Instructions == nil {
		rec.Instructions = []string{}
	}
	if rec.Ingredients == nil {
		rec.Ingredients = []outbound.ParsedIngredient{}
	}
	if rec.Servings <= 0 {
		rec.Servings = 1
	}
	if rec.PrepMinutes < 0 {
		rec.PrepMinutes = 0
	}
	if rec.CookMinutes < 0 {
		rec.CookMinutes = 0
	}
}

// describeRecipe renders a parsed recipe back into prompt text for the
// follow-up extraction calls.
func describeRecipe(rec *outbound.ParsedRecipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recipe: %s\n", rec.Title)
	if rec.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", rec.Description)
	}
	fmt.Fprintf(&b, "Servings: %d\n", rec.Servings)
	b.WriteString("Ingredients:\n")
	for _, ing := range rec.Ingredients {
		fmt.Fprintf(&b, "- %s %s %s\n", ing.Quantity, ing.Unit, ing.Ingredient)
	}
	b.WriteString("Instructions:\n")
	for i, step := range rec.Instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return b.String()
}

// canonicalTagNames flattens the seeded tag catalog for the classifier
// prompt.
func canonicalTagNames() []string {
	catalog := tag.Catalog()
	names := make([]string, 0, len(catalog))
	for _, t := range catalog {
		names = append(names, t.Name)
	}
	return names
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
