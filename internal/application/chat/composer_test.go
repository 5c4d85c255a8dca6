package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mirepoix/v1/internal/domain/chat"
	"github.com/mirepoix/v1/internal/ports/outbound"
)

type stubNutrition struct {
	exact map[string]*outbound.FoodRecord
	fuzzy map[string]outbound.FuzzyResult
}

func (s *stubNutrition) Exact(name string) (*outbound.FoodRecord, bool) {
	rec, ok := s.exact[name]
	return rec, ok
}

func (s *stubNutrition) Fuzzy(query string) outbound.FuzzyResult {
	return s.fuzzy[query]
}

type stubSubs struct {
	results map[string][]outbound.Substitute
}

func (s *stubSubs) Normalize(name string) string { return name }

func (s *stubSubs) SubstitutesFor(name string, topN int) []outbound.Substitute {
	list := s.results[name]
	if len(list) > topN {
		list = list[:topN]
	}
	return list
}

type stubClassifier struct {
	ready bool
	preds []outbound.Prediction
	err   error
}

func (s *stubClassifier) Ready() bool { return s.ready }

func (s *stubClassifier) Predict(ctx context.Context, imagePath string) ([]outbound.Prediction, error) {
	return s.preds, s.err
}

func floatPtr(v float64) *float64 { return &v }

func appleRecord() *outbound.FoodRecord {
	return &outbound.FoodRecord{
		Name: "Apple, raw",
		Nutrients: map[string]outbound.Nutrient{
			"calories":      {Value: floatPtr(52), Unit: "kcal"},
			"protein":       {Value: floatPtr(0.3), Unit: "g"},
			"carbohydrates": {Value: floatPtr(14), Unit: "g"},
		},
	}
}

func newTestComposer(n outbound.NutritionLookup, s outbound.SubstitutionRecommender, c outbound.ImageClassifier) *Composer {
	if n == nil {
		n = &stubNutrition{}
	}
	if s == nil {
		s = &stubSubs{}
	}
	return NewComposer(n, s, c, 3, 5, zap.NewNop())
}

func TestComposer_ClassifyImage_WithChainedNutrition(t *testing.T) {
	nutrition := &stubNutrition{
		exact: map[string]*outbound.FoodRecord{},
		fuzzy: map[string]outbound.FuzzyResult{
			"Apple": {Found: appleRecord()},
		},
	}
	classifier := &stubClassifier{ready: true, preds: []outbound.Prediction{
		{Name: "apple", Confidence: 0.95},
		{Name: "pear", Confidence: 0.03},
	}}
	composer := newTestComposer(nutrition, nil, classifier)

	reply := composer.Compose(context.Background(), chat.Turn{
		ImagePath: "/tmp/q.jpg",
		Intent:    chat.IntentClassifyImage,
		Entities:  chat.Entities{SecondaryIntent: chat.IntentNutrition},
	})

	assert.Contains(t, reply.Response, "Classified as 'Apple' (95%)")
	assert.Contains(t, reply.Response, "Pear (3%)")
	assert.Contains(t, reply.Response, "Nutritional info for Apple, raw: Calories: 52kcal")
	assert.Contains(t, reply.Response, "(approx. per 100g)")
}

func TestComposer_ClassifyImage_WithChainedSubstitutes(t *testing.T) {
	subs := &stubSubs{results: map[string][]outbound.Substitute{
		"Granny Smith": {
			{Name: "honeycrisp", Score: 1.0},
			{Name: "pear", Score: 0.5},
		},
	}}
	classifier := &stubClassifier{ready: true, preds: []outbound.Prediction{
		{Name: "granny_smith", Confidence: 0.87},
	}}
	composer := newTestComposer(nil, subs, classifier)

	reply := composer.Compose(context.Background(), chat.Turn{
		ImagePath: "/tmp/q.jpg",
		Intent:    chat.IntentClassifyImage,
		Entities:  chat.Entities{SecondaryIntent: chat.IntentSubstitutes},
	})

	assert.Contains(t, reply.Response, "Classified as 'Granny Smith' (87%)")
	assert.Contains(t, reply.Response, "Substitutes for Granny Smith: honeycrisp (Score: 1.00), pear (Score: 0.50)")
}

func TestComposer_ClassifyImage_Degraded(t *testing.T) {
	tests := []struct {
		name       string
		imagePath  string
		classifier outbound.ImageClassifier
		want       string
	}{
		{
			name:       "no image attached",
			classifier: &stubClassifier{ready: true},
			want:       msgImageRequired,
		},
		{
			name:       "classifier not loaded",
			imagePath:  "/tmp/q.jpg",
			classifier: &stubClassifier{ready: false},
			want:       msgClassifierDown,
		},
		{
			name:       "prediction error",
			imagePath:  "/tmp/q.jpg",
			classifier: &stubClassifier{ready: true, err: fmt.Errorf("boom")},
			want:       msgClassifyFailed,
		},
		{
			name:       "no predictions",
			imagePath:  "/tmp/q.jpg",
			classifier: &stubClassifier{ready: true},
			want:       msgClassifyFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			composer := newTestComposer(nil, nil, tt.classifier)
			reply := composer.Compose(context.Background(), chat.Turn{
				ImagePath: tt.imagePath,
				Intent:    chat.IntentClassifyImage,
			})
			assert.Equal(t, tt.want, reply.Response)
		})
	}
}

func TestComposer_Substitutes(t *testing.T) {
	subs := &stubSubs{results: map[string][]outbound.Substitute{
		"butter": {
			{Name: "margarine", Score: 1.0},
			{Name: "olive oil", Score: 0.5},
		},
	}}
	composer := newTestComposer(nil, subs, nil)

	reply := composer.Compose(context.Background(), chat.Turn{
		Intent:   chat.IntentSubstitutes,
		Entities: chat.Entities{FoodItem: "butter"},
	})
	assert.Equal(t, "Substitutes for butter: margarine (Score: 1.00), olive oil (Score: 0.50).", reply.Response)

	reply = composer.Compose(context.Background(), chat.Turn{
		Intent:   chat.IntentSubstitutes,
		Entities: chat.Entities{FoodItem: "unobtainium"},
	})
	assert.Equal(t, "I couldn't find any substitutes for 'unobtainium'.", reply.Response)

	reply = composer.Compose(context.Background(), chat.Turn{Intent: chat.IntentSubstitutes})
	assert.Equal(t, "Which ingredient do you need a substitute for?", reply.Response)
}

func TestComposer_NutritionalInfo(t *testing.T) {
	nutrition := &stubNutrition{
		fuzzy: map[string]outbound.FuzzyResult{
			"apple": {Found: appleRecord()},
			"carrot": {Matches: []string{
				"Carrot juice", "Carrot, cooked", "Carrot, raw",
			}},
		},
	}
	composer := newTestComposer(nutrition, nil, nil)

	reply := composer.Compose(context.Background(), chat.Turn{
		Intent:   chat.IntentNutrition,
		Entities: chat.Entities{FoodItem: "apple"},
	})
	assert.Contains(t, reply.Response, "Nutritional info for Apple, raw:")
	assert.Contains(t, reply.Response, "Calories: 52kcal, Protein: 0.3g, Carbs: 14g")
	assert.Empty(t, reply.DisambiguationMatches)

	reply = composer.Compose(context.Background(), chat.Turn{
		Intent:   chat.IntentNutrition,
		Entities: chat.Entities{FoodItem: "carrot"},
	})
	assert.Equal(t, "I found a few matches for 'carrot'. Which one did you mean?", reply.Response)
	assert.Equal(t, []string{"Carrot juice", "Carrot, cooked", "Carrot, raw"}, reply.DisambiguationMatches)

	reply = composer.Compose(context.Background(), chat.Turn{
		Intent:   chat.IntentNutrition,
		Entities: chat.Entities{FoodItem: "plutonium"},
	})
	assert.Equal(t, "I couldn't find nutritional information for 'plutonium'.", reply.Response)
}

func TestComposer_ClassifyFoodItem(t *testing.T) {
	nutrition := &stubNutrition{
		exact: map[string]*outbound.FoodRecord{},
		fuzzy: map[string]outbound.FuzzyResult{
			"mushroom": {Found: &outbound.FoodRecord{
				Name: "Mushroom, white, raw",
				Nutrients: map[string]outbound.Nutrient{
					"calories": {Value: floatPtr(22), Unit: "kcal"},
				},
			}},
		},
	}
	composer := newTestComposer(nutrition, nil, nil)

	reply := composer.Compose(context.Background(), chat.Turn{
		Intent:   chat.IntentClassifyFood,
		Entities: chat.Entities{FoodItem: "mushroom"},
	})
	assert.Contains(t, reply.Response, "That looks like Mushroom, white, raw.")

	reply = composer.Compose(context.Background(), chat.Turn{
		Intent:   chat.IntentClassifyFood,
		Entities: chat.Entities{FoodItem: "gravel"},
	})
	assert.Contains(t, reply.Response, "I don't recognize 'gravel'")
}

func TestComposer_HowTo(t *testing.T) {
	composer := newTestComposer(nil, nil, nil)

	reply := composer.Compose(context.Background(), chat.Turn{
		Intent:   chat.IntentHowTo,
		Entities: chat.Entities{HowToTopic: "meal_planner"},
	})
	assert.Equal(t, "You can plan your week's meals with the meal planner.", reply.Response)
	assert.Equal(t, "Open Meal Planner", reply.LinkText)
	assert.Equal(t, "/meal-planner", reply.LinkURL)

	reply = composer.Compose(context.Background(), chat.Turn{
		Intent: chat.IntentHowTo,
	})
	assert.Equal(t, msgHowToGeneric, reply.Response)
	assert.Empty(t, reply.LinkURL)
}

func TestComposer_StaticIntents(t *testing.T) {
	composer := newTestComposer(nil, nil, nil)
	ctx := context.Background()

	assert.Equal(t, msgGreeting, composer.Compose(ctx, chat.Turn{Intent: chat.IntentGreeting}).Response)
	assert.Equal(t, msgWebsiteInfo, composer.Compose(ctx, chat.Turn{Intent: chat.IntentWebsiteInfo}).Response)
	assert.Equal(t, msgUnknown, composer.Compose(ctx, chat.Turn{Intent: chat.IntentUnknown}).Response)

	who := composer.Compose(ctx, chat.Turn{Intent: chat.IntentWhoAreYou})
	assert.Equal(t, msgWhoAreYou, who.Response)
	assert.Equal(t, assistantAvatarURL, who.ImageURL)
}

func TestFormatNutrients(t *testing.T) {
	rec := &outbound.FoodRecord{
		Name: "Egg, whole, raw",
		Nutrients: map[string]outbound.Nutrient{
			"calories": {Value: floatPtr(143), Unit: "kcal"},
			"protein":  {Value: floatPtr(12.6), Unit: "g"},
			"fat":      {Value: floatPtr(9.5), Unit: "g"},
			"sodium":   {Value: floatPtr(142), Unit: "mg"},
			"fiber":    {Value: nil, Unit: "g"},
		},
	}

	got := formatNutrients(rec)

	// curated order, uncurated sodium and nil fiber omitted
	assert.Equal(t, "Calories: 143kcal, Protein: 12.6g, Fat: 9.5g (approx. per 100g)", got)
}

func TestFormatNutrients_NoCuratedData(t *testing.T) {
	rec := &outbound.FoodRecord{
		Name: "Salt",
		Nutrients: map[string]outbound.Nutrient{
			"sodium": {Value: floatPtr(38758), Unit: "mg"},
		},
	}
	assert.Equal(t, "I have a record for 'Salt' but no detailed nutrient data.", formatNutrients(rec))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Granny Smith", displayName("granny_smith"))
	assert.Equal(t, "Apple", displayName("APPLE"))
	assert.Equal(t, "Red Velvet Cake", displayName("red_velvet_cake"))
}

func TestPercentRounding(t *testing.T) {
	assert.Equal(t, 95, percent(0.954))
	assert.Equal(t, 96, percent(0.956))
	assert.Equal(t, 0, percent(0.004))
	assert.Equal(t, 100, percent(1.0))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "52", formatAmount(52.0))
	assert.Equal(t, "0.3", formatAmount(0.3))
	assert.Equal(t, "12.6", formatAmount(12.6))
}

func TestComposer_SubstituteListTruncated(t *testing.T) {
	var many []outbound.Substitute
	for i := 0; i < 8; i++ {
		many = append(many, outbound.Substitute{Name: fmt.Sprintf("sub%d", i), Score: 1.0 / float64(i+1)})
	}
	subs := &stubSubs{results: map[string][]outbound.Substitute{"milk": many}}
	composer := NewComposer(&stubNutrition{}, subs, nil, 3, 2, zap.NewNop())

	reply := composer.Compose(context.Background(), chat.Turn{
		Intent:   chat.IntentSubstitutes,
		Entities: chat.Entities{FoodItem: "milk"},
	})
	require.Contains(t, reply.Response, "sub0")
	assert.Contains(t, reply.Response, "sub1")
	assert.NotContains(t, reply.Response, "sub2")
}
