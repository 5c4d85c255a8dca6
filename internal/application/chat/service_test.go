package chat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mirepoix/v1/internal/infrastructure/nlp"
	"github.com/mirepoix/v1/internal/ports/inbound"
	"github.com/mirepoix/v1/internal/ports/outbound"
	"github.com/mirepoix/v1/pkg/errors"
)

func newTestService(classifier outbound.ImageClassifier, nutrition outbound.NutritionLookup) *Service {
	logger := zap.NewNop()
	engine := NewEngine(nlp.NewTokenizer(), DefaultKeywords(), logger)
	if nutrition == nil {
		nutrition = &stubNutrition{}
	}
	composer := NewComposer(nutrition, &stubSubs{}, classifier, 3, 5, logger)
	return NewService(engine, composer, logger)
}

func writeTempImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "query.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xFF, 0xD8, 0xFF}, 0o600))
	return path
}

func TestService_Respond_ReleasesImageOnSuccess(t *testing.T) {
	classifier := &stubClassifier{ready: true, preds: []outbound.Prediction{
		{Name: "apple", Confidence: 0.9},
	}}
	svc := newTestService(classifier, nil)
	path := writeTempImage(t)

	reply, err := svc.Respond(context.Background(), inbound.ChatQuery{
		Text:      "what is this",
		ImagePath: path,
	})
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "Classified as 'Apple' (90%)")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "query image must be deleted")
}

func TestService_Respond_ReleasesImageWhenClassifierDown(t *testing.T) {
	svc := newTestService(&stubClassifier{ready: false}, nil)
	path := writeTempImage(t)

	reply, err := svc.Respond(context.Background(), inbound.ChatQuery{
		Text:      "what is this",
		ImagePath: path,
	})
	require.NoError(t, err)
	assert.Equal(t, msgClassifierDown, reply.Response)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "query image must be deleted on the degraded path too")
}

func TestService_Respond_TextOnly(t *testing.T) {
	svc := newTestService(nil, nil)

	reply, err := svc.Respond(context.Background(), inbound.ChatQuery{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, msgGreeting, reply.Response)

	reply, err = svc.Respond(context.Background(), inbound.ChatQuery{Text: "tell me a story"})
	require.NoError(t, err)
	assert.Equal(t, msgUnknown, reply.Response)
}

func TestService_NutritionFor(t *testing.T) {
	nutrition := &stubNutrition{
		fuzzy: map[string]outbound.FuzzyResult{
			"apple":  {Found: appleRecord()},
			"carrot": {Matches: []string{"Carrot juice", "Carrot, cooked", "Carrot, raw"}},
		},
	}
	svc := newTestService(nil, nutrition)
	ctx := context.Background()

	reply, err := svc.NutritionFor(ctx, "apple")
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "Nutrition for Apple, raw:")
	assert.Contains(t, reply.Response, "Calories: 52kcal")

	reply, err = svc.NutritionFor(ctx, "carrot")
	require.NoError(t, err)
	assert.Len(t, reply.DisambiguationMatches, 3)

	reply, err = svc.NutritionFor(ctx, "plutonium")
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "couldn't find nutritional information")

	_, err = svc.NutritionFor(ctx, "   ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeValidationFailed))
}
