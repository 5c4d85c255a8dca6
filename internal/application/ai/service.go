// Package ai wraps the language-model parser with response caching.
// Model calls are slow and deterministic enough at low temperature that
// memoizing by input hash saves the bulk of repeated-submission latency.
package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/mirepoix/v1/internal/domain/recipe"
	"github.com/mirepoix/v1/internal/ports/outbound"
)

// DefaultTTL bounds how long a memoized model response stays valid.
const DefaultTTL = 24 * time.Hour

// CachingParser implements outbound.RecipeParser by delegating to the
// real parser and memoizing results. Transport failures are never cached;
// not-a-recipe rejections are, since resubmitting the same text cannot
// change the verdict.
type CachingParser struct {
	parser outbound.RecipeParser
	cache  outbound.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachingParser wraps parser with cache-backed memoization.
func NewCachingParser(parser outbound.RecipeParser, cache outbound.CacheRepository, logger *zap.Logger) *CachingParser {
	return &CachingParser{
		parser: parser,
		cache:  cache,
		ttl:    DefaultTTL,
		logger: logger.Named("ai-cache"),
	}
}

// cachedOutcome is the serializable subset of a parse outcome.
type cachedOutcome struct {
	Recipe     *outbound.ParsedRecipe `json:"recipe,omitempty"`
	NotARecipe bool                   `json:"not_a_recipe,omitempty"`
}

// ParseRecipe returns a cached outcome when one exists, otherwise calls
// the model and stores the result.
func (p *CachingParser) ParseRecipe(ctx context.Context, text string) outbound.ParseOutcome {
	key := cacheKey("parse_recipe", text)

	if data, err := p.cache.Get(ctx, key); err == nil {
		var cached cachedOutcome
		if err := json.Unmarshal(data, &cached); err == nil {
			p.logger.Debug("parse cache hit", zap.String("key", key))
			return outbound.ParseOutcome{Recipe: cached.Recipe, NotARecipe: cached.NotARecipe}
		}
	}

	outcome := p.parser.ParseRecipe(ctx, text)
	if outcome.Failure == nil {
		p.store(ctx, key, cachedOutcome{Recipe: outcome.Recipe, NotARecipe: outcome.NotARecipe})
	}
	return outcome
}

// ExtractNutrition memoizes successful nutrition blobs only; error blobs
// are recomputed so a recovered model can fill them in.
func (p *CachingParser) ExtractNutrition(ctx context.Context, rec *outbound.ParsedRecipe) recipe.NutritionBlob {
	key := cacheKey("extract_nutrition", recipeDigest(rec))

	if data, err := p.cache.Get(ctx, key); err == nil {
		var blob recipe.NutritionBlob
		if err := json.Unmarshal(data, &blob); err == nil {
			return blob
		}
	}

	blob := p.parser.ExtractNutrition(ctx, rec)
	if blob.Success {
		p.store(ctx, key, blob)
	}
	return blob
}

// ExtractTags memoizes successful tag extractions.
func (p *CachingParser) ExtractTags(ctx context.Context, rec *outbound.ParsedRecipe) outbound.TagExtraction {
	key := cacheKey("extract_tags", recipeDigest(rec))

	if data, err := p.cache.Get(ctx, key); err == nil {
		var extraction outbound.TagExtraction
		if err := json.Unmarshal(data, &extraction); err == nil {
			return extraction
		}
	}

	extraction := p.parser.ExtractTags(ctx, rec)
	if extraction.Success {
		p.store(ctx, key, extraction)
	}
	return extraction
}

func (p *CachingParser) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := p.cache.Set(ctx, key, data, p.ttl); err != nil {
		p.logger.Debug("cache store failed", zap.String("key", key), zap.Error(err))
	}
}

func cacheKey(operation, input string) string {
	sum := sha256.Sum256([]byte(input))
	return "ai:" + operation + ":" + hex.EncodeToString(sum[:])
}

// recipeDigest builds a stable cache identity for a parsed recipe.
func recipeDigest(rec *outbound.ParsedRecipe) string {
	data, err := json.Marshal(rec)
	if err != nil {
		return rec.Title
	}
	return string(data)
}
