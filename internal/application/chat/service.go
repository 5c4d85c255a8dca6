package chat

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mirepoix/v1/internal/domain/chat"
	"github.com/mirepoix/v1/internal/ports/inbound"
	"github.com/mirepoix/v1/pkg/errors"
)

// Service is the conversational use case: resolve intent, compose a
// reply, and release any per-request image file.
type Service struct {
	engine   *Engine
	composer *Composer
	logger   *zap.Logger
}

// NewService creates the chat service.
func NewService(engine *Engine, composer *Composer, logger *zap.Logger) *Service {
	return &Service{
		engine:   engine,
		composer: composer,
		logger:   logger.Named("chat"),
	}
}

// Respond resolves and answers one query. The uploaded image, when
// present, is deleted on every exit path; it is scoped to this request.
func (s *Service) Respond(ctx context.Context, q inbound.ChatQuery) (*chat.Reply, error) {
	if q.ImagePath != "" {
		defer s.releaseImage(q.ImagePath)
	}

	intent, entities := s.engine.Resolve(q.Text, q.ImagePath != "")
	turn := chat.Turn{
		Text:      q.Text,
		ImagePath: q.ImagePath,
		Intent:    intent,
		Entities:  entities,
	}

	reply := s.composer.Compose(ctx, turn)

	s.logger.Info("query resolved",
		zap.String("intent", string(intent)),
		zap.String("food_item", entities.FoodItem),
		zap.Bool("image", q.ImagePath != ""))
	return reply, nil
}

// NutritionFor is the direct nutrition lookup outside the chat flow. It
// shares the composer's fuzzy resolution and formatting.
func (s *Service) NutritionFor(ctx context.Context, foodName string) (*chat.Reply, error) {
	foodName = strings.TrimSpace(foodName)
	if foodName == "" {
		return nil, errors.NewValidationError("food name is required")
	}

	result := s.composer.nutrition.Fuzzy(foodName)
	switch {
	case result.Found != nil:
		return &chat.Reply{Response: fmt.Sprintf(
			"Nutrition for %s: %s", result.Found.Name, formatNutrients(result.Found))}, nil
	case len(result.Matches) > 0:
		return &chat.Reply{
			Response:              fmt.Sprintf("I found a few matches for '%s'. Which one did you mean?", foodName),
			DisambiguationMatches: result.Matches,
		}, nil
	default:
		return &chat.Reply{Response: fmt.Sprintf(
			"I couldn't find nutritional information for '%s'.", foodName)}, nil
	}
}

func (s *Service) releaseImage(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove query image",
			zap.String("path", path),
			zap.Error(err))
	}
}
