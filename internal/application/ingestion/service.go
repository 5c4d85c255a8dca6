// Package ingestion implements the recipe ingestion pipeline: parse,
// normalize, dedup ingredients, link allergens, extract nutrition and
// tags, and persist the whole graph in one transaction.
package ingestion

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mirepoix/v1/internal/domain/ingredient"
	"github.com/mirepoix/v1/internal/domain/recipe"
	"github.com/mirepoix/v1/internal/ports/inbound"
	"github.com/mirepoix/v1/internal/ports/outbound"
	"github.com/mirepoix/v1/pkg/errors"
)

// Service orchestrates recipe ingestion. It is the sole writer for
// ingredient, allergen, recipe, and tag-assignment state; everything it
// touches within one submission commits or rolls back together.
type Service struct {
	uow       outbound.UnitOfWork
	parser    outbound.RecipeParser
	allergies outbound.AllergyAnalyzer
	logger    *zap.Logger
}

// NewService creates the ingestion service.
func NewService(
	uow outbound.UnitOfWork,
	parser outbound.RecipeParser,
	allergies outbound.AllergyAnalyzer,
	logger *zap.Logger,
) *Service {
	return &Service{
		uow:       uow,
		parser:    parser,
		allergies: allergies,
		logger:    logger.Named("ingestion"),
	}
}

// IngestRecipe runs the full pipeline. Non-recipe text fails with a
// 400-class error before any write; once writing starts, any failure
// rolls back the entire recipe graph. Tag extraction and allergen
// attachment failures are non-fatal.
func (s *Service) IngestRecipe(ctx context.Context, sub inbound.RecipeSubmission) (*inbound.RecipeDTO, error) {
	parsed, err := s.resolveSubmission(ctx, sub)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(parsed.Title) == "" {
		return nil, errors.NewValidationError("recipe title is required")
	}
	if len(parsed.Instructions) == 0 {
		return nil, errors.NewValidationError("recipe must have at least one instruction")
	}
	if len(parsed.Ingredients) == 0 {
		return nil, errors.NewValidationError("recipe must have at least one ingredient")
	}

	var dto *inbound.RecipeDTO
	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos outbound.Repositories) error {
		rec, allergenIndex, err := s.buildRecipe(ctx, repos, parsed, sub)
		if err != nil {
			return err
		}

		// nutrition blob is stored verbatim, success or not
		rec.SetNutrition(s.parser.ExtractNutrition(ctx, parsed))

		if err := rec.ValidateForPersist(); err != nil {
			return errors.NewValidationError(err.Error())
		}
		if err := repos.Recipes().Create(ctx, rec); err != nil {
			return err
		}

		tagNames := s.assignTags(ctx, repos, rec, parsed)

		dto = assembleDTO(rec, allergenIndex, tagNames)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "recipe ingestion failed")
	}

	s.logger.Info("recipe ingested",
		zap.String("recipe_id", dto.ID.String()),
		zap.String("title", dto.Title),
		zap.Int("ingredients", len(dto.Ingredients)),
		zap.Int("tags", len(dto.Tags)))
	return dto, nil
}

// resolveSubmission turns the submission into a parsed recipe: structured
// records pass through, text goes to the language model.
func (s *Service) resolveSubmission(ctx context.Context, sub inbound.RecipeSubmission) (*outbound.ParsedRecipe, error) {
	if sub.Record != nil {
		return recordToParsed(sub.Record), nil
	}
	if strings.TrimSpace(sub.Text) == "" {
		return nil, errors.NewValidationError("submission must carry text or a structured record")
	}

	outcome := s.parser.ParseRecipe(ctx, sub.Text)
	switch {
	case outcome.NotARecipe:
		return nil, errors.NewNotARecipeError()
	case outcome.Failure != nil:
		return nil, outcome.Failure
	case outcome.Recipe == nil:
		return nil, errors.NewParserFailureError("parse_recipe", nil)
	}
	return outcome.Recipe, nil
}

// buildRecipe resolves every ingredient (get-or-create), attaches
// allergens, and assembles the aggregate. Duplicate ingredient rows are
// silently dropped. Returns the allergen names recorded per ingredient id
// for the response DTO.
func (s *Service) buildRecipe(
	ctx context.Context,
	repos outbound.Repositories,
	parsed *outbound.ParsedRecipe,
	sub inbound.RecipeSubmission,
) (*recipe.Recipe, map[uuid.UUID][]string, error) {
	rec, err := recipe.NewRecipe(parsed.Title, parsed.Description, sub.AuthorID)
	if err != nil {
		return nil, nil, errors.NewValidationError(err.Error())
	}
	if err := rec.SetInstructions(parsed.Instructions); err != nil {
		return nil, nil, errors.NewValidationError(err.Error())
	}
	rec.SetTiming(parsed.PrepMinutes, parsed.CookMinutes)
	rec.SetServings(parsed.Servings)
	if sub.IsPublic != nil {
		rec.SetPublic(*sub.IsPublic)
	}
	if sub.ImageURL != "" {
		rec.SetImageURL(sub.ImageURL)
	}

	allergenIndex := make(map[uuid.UUID][]string)
	for _, line := range parsed.Ingredients {
		name := ingredient.NormalizeName(line.Ingredient)
		if name == "" {
			continue
		}

		ing, err := repos.Ingredients().GetOrCreate(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		if rec.HasIngredient(ing.ID) {
			s.logger.Debug("duplicate ingredient dropped",
				zap.String("ingredient", name),
				zap.String("recipe", parsed.Title))
			continue
		}

		s.attachAllergens(ctx, repos, ing)
		allergenIndex[ing.ID] = ing.AllergenNames()

		quantity := strings.TrimSpace(line.Quantity)
		if quantity == "" {
			quantity = recipe.DefaultQuantity
		}
		unit := strings.TrimSpace(line.Unit)
		if unit == "" {
			unit = recipe.DefaultUnit
		}

		if err := rec.AddIngredientLine(recipe.IngredientLine{
			IngredientID: ing.ID,
			Name:         ing.Name,
			Quantity:     quantity,
			Unit:         unit,
		}); err != nil {
			return nil, nil, errors.NewValidationError(err.Error())
		}
	}

	if len(rec.Ingredients()) == 0 {
		return nil, nil, errors.NewValidationError("no valid ingredients in submission")
	}
	return rec, allergenIndex, nil
}

// attachAllergens links every corpus allergen to the ingredient.
// Attachment failures are logged and skipped per allergen; the commit
// itself is unaffected.
func (s *Service) attachAllergens(ctx context.Context, repos outbound.Repositories, ing *ingredient.Ingredient) {
	for _, name := range s.allergies.AllergensFor(ing.Name) {
		if ing.HasAllergen(name) {
			continue
		}
		allergen, err := repos.Allergens().GetOrCreate(ctx, name)
		if err != nil {
			s.logger.Warn("allergen resolution failed",
				zap.String("allergen", name),
				zap.String("ingredient", ing.Name),
				zap.Error(err))
			continue
		}
		if err := repos.Ingredients().LinkAllergen(ctx, ing.ID, allergen.ID); err != nil {
			s.logger.Warn("allergen link failed",
				zap.String("allergen", name),
				zap.String("ingredient", ing.Name),
				zap.Error(err))
			continue
		}
		ing.AttachAllergen(*allergen)
	}
}

// assignTags resolves the model's tag names against the registry and
// assigns the survivors. Every failure path leaves the recipe with zero
// tags rather than aborting the commit.
func (s *Service) assignTags(
	ctx context.Context,
	repos outbound.Repositories,
	rec *recipe.Recipe,
	parsed *outbound.ParsedRecipe,
) []string {
	extraction := s.parser.ExtractTags(ctx, parsed)
	if !extraction.Success || len(extraction.Tags) == 0 {
		if extraction.Error != "" {
			s.logger.Warn("tag extraction failed",
				zap.String("recipe", rec.Title()),
				zap.String("error", extraction.Error))
		}
		return nil
	}

	tags, err := repos.Tags().FindByNames(ctx, extraction.Tags)
	if err != nil {
		s.logger.Warn("tag resolution failed", zap.Error(err))
		return nil
	}
	if len(tags) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(tags))
	names := make([]string, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
		names[i] = t.Name
	}
	if err := repos.Tags().Assign(ctx, rec.ID(), ids); err != nil {
		s.logger.Warn("tag assignment failed", zap.Error(err))
		return nil
	}
	rec.AssignTags(ids)
	return names
}

// GetRecipe assembles the stored view of an ingested recipe, combining
// the aggregate with its ingredient allergens and tag names.
func (s *Service) GetRecipe(ctx context.Context, id uuid.UUID) (*inbound.RecipeDTO, error) {
	rec, err := s.uow.Recipes().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allergenIndex := make(map[uuid.UUID][]string)
	for _, line := range rec.Ingredients() {
		ing, err := s.uow.Ingredients().FindByName(ctx, line.Name)
		if err != nil {
			continue
		}
		allergenIndex[line.IngredientID] = ing.AllergenNames()
	}

	var tagNames []string
	if len(rec.TagIDs()) > 0 {
		all, err := s.uow.Tags().All(ctx)
		if err == nil {
			wanted := make(map[uuid.UUID]bool, len(rec.TagIDs()))
			for _, tagID := range rec.TagIDs() {
				wanted[tagID] = true
			}
			for _, t := range all {
				if wanted[t.ID] {
					tagNames = append(tagNames, t.Name)
				}
			}
		}
	}

	return assembleDTO(rec, allergenIndex, tagNames), nil
}

func recordToParsed(record *inbound.RecipeRecord) *outbound.ParsedRecipe {
	ingredients := make([]outbound.ParsedIngredient, len(record.Ingredients))
	for i, ing := range record.Ingredients {
		ingredients[i] = outbound.ParsedIngredient{
			Ingredient: ing.Ingredient,
			Unit:       ing.Unit,
			Quantity:   ing.Quantity,
		}
	}
	return &outbound.ParsedRecipe{
		Title:        record.Title,
		Description:  record.Description,
		Instructions: record.Instructions,
		PrepMinutes:  record.PreparationTimeMinutes,
		CookMinutes:  record.CookingTimeMinutes,
		Servings:     record.Servings,
		Ingredients:  ingredients,
	}
}

func assembleDTO(rec *recipe.Recipe, allergenIndex map[uuid.UUID][]string, tagNames []string) *inbound.RecipeDTO {
	lines := make([]inbound.IngredientLineDTO, len(rec.Ingredients()))
	for i, line := range rec.Ingredients() {
		lines[i] = inbound.IngredientLineDTO{
			IngredientID: line.IngredientID,
			Name:         line.Name,
			Quantity:     line.Quantity,
			Unit:         line.Unit,
			Allergens:    allergenIndex[line.IngredientID],
		}
	}

	nutrition := rec.Nutrition()
	nutritionDTO := inbound.NutritionDTO{
		Success:    nutrition.Success,
		PerServing: nutrition.PerServing,
		Notes:      nutrition.Notes,
		Error:      nutrition.Error,
	}
	if len(nutrition.Nutrition) > 0 {
		nutritionDTO.Nutrition = make(map[string]inbound.NutrientDTO, len(nutrition.Nutrition))
		for name, amount := range nutrition.Nutrition {
			nutritionDTO.Nutrition[name] = inbound.NutrientDTO{Amount: amount.Amount, Unit: amount.Unit}
		}
	}

	return &inbound.RecipeDTO{
		ID:           rec.ID(),
		Title:        rec.Title(),
		Description:  rec.Description(),
		AuthorID:     rec.AuthorID(),
		Instructions: rec.Instructions(),
		PrepMinutes:  rec.PrepMinutes(),
		CookMinutes:  rec.CookMinutes(),
		Servings:     rec.Servings(),
		Ingredients:  lines,
		Nutrition:    nutritionDTO,
		Tags:         tagNames,
		IsPublic:     rec.IsPublic(),
		ImageURL:     rec.ImageURL(),
	}
}
