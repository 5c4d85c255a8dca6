package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/mirepoix/v1/internal/domain/chat"
	"github.com/mirepoix/v1/internal/infrastructure/nlp"
)

func newTestEngine() *Engine {
	return NewEngine(nlp.NewTokenizer(), DefaultKeywords(), zap.NewNop())
}

func TestEngine_Resolve_IntentTable(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name          string
		text          string
		image         bool
		wantIntent    chat.Intent
		wantSecondary chat.Intent
		wantFood      string
		wantTopic     string
	}{
		{
			name:       "greeting",
			text:       "hello there",
			wantIntent: chat.IntentGreeting,
		},
		{
			name:       "website info phrase",
			text:       "what is this website about?",
			wantIntent: chat.IntentWebsiteInfo,
		},
		{
			name:       "website info single word exact",
			text:       "site",
			wantIntent: chat.IntentWebsiteInfo,
		},
		{
			name:       "who are you",
			text:       "who are you?",
			wantIntent: chat.IntentWhoAreYou,
		},
		{
			name:          "image with nutrition keyword chains nutrition",
			text:          "what is this and how many calories",
			image:         true,
			wantIntent:    chat.IntentClassifyImage,
			wantSecondary: chat.IntentNutrition,
		},
		{
			name:          "image with substitute keyword chains substitutes",
			text:          "any substitute for this?",
			image:         true,
			wantIntent:    chat.IntentClassifyImage,
			wantSecondary: chat.IntentSubstitutes,
		},
		{
			name:       "image with empty query",
			text:       "",
			image:      true,
			wantIntent: chat.IntentClassifyImage,
		},
		{
			name:       "image with short query",
			text:       "mystery dish",
			image:      true,
			wantIntent: chat.IntentClassifyImage,
		},
		{
			name:       "image with long unrelated query falls through",
			text:       "my grandmother always cooked something special on sunday evenings",
			image:      true,
			wantIntent: chat.IntentUnknown,
		},
		{
			name:       "classify food item",
			text:       "identify this mushroom",
			wantIntent: chat.IntentClassifyFood,
			wantFood:   "mushroom",
		},
		{
			name:       "substitutes via instead of",
			text:       "what can I use instead of butter",
			wantIntent: chat.IntentSubstitutes,
			wantFood:   "butter",
		},
		{
			name:       "substitutes with preposition",
			text:       "substitutes for dark chocolate chips",
			wantIntent: chat.IntentSubstitutes,
			wantFood:   "dark chocolate chips",
		},
		{
			name:       "nutrition with participle",
			text:       "nutrition for fried rice",
			wantIntent: chat.IntentNutrition,
			wantFood:   "fried rice",
		},
		{
			name:       "nutrition chunk fallback",
			text:       "calories in a green apple",
			wantIntent: chat.IntentNutrition,
			wantFood:   "green apple",
		},
		{
			name:       "how to with general keyword",
			text:       "how do I use the meal planner",
			wantIntent: chat.IntentHowTo,
			wantTopic:  "meal_planner",
		},
		{
			name:       "how to exact topic phrase",
			text:       "meal plan",
			wantIntent: chat.IntentHowTo,
			wantTopic:  "meal_planner",
		},
		{
			name:       "how to topic in long query without general keyword",
			text:       "I was wondering yesterday whether anyone ever used the meal planner here",
			wantIntent: chat.IntentUnknown,
		},
		{
			name:       "unrecognized",
			text:       "tell me a story",
			wantIntent: chat.IntentUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, entities := engine.Resolve(tt.text, tt.image)

			assert.Equal(t, tt.wantIntent, intent)
			assert.Equal(t, tt.wantSecondary, entities.SecondaryIntent)
			assert.Equal(t, tt.wantFood, entities.FoodItem)
			assert.Equal(t, tt.wantTopic, entities.HowToTopic)
		})
	}
}

func TestEngine_Resolve_IsDeterministic(t *testing.T) {
	engine := newTestEngine()

	queries := []struct {
		text  string
		image bool
	}{
		{"what can I use instead of butter", false},
		{"how do I upload a recipe to the meal planner", false},
		{"what is this and how many calories", true},
		{"calories in a green apple", false},
	}

	for _, q := range queries {
		firstIntent, firstEntities := engine.Resolve(q.text, q.image)
		for i := 0; i < 10; i++ {
			intent, entities := engine.Resolve(q.text, q.image)
			assert.Equal(t, firstIntent, intent, q.text)
			assert.Equal(t, firstEntities, entities, q.text)
		}
	}
}

func TestEngine_Clean(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		in   string
		want string
	}{
		{"this mushroom", "mushroom"},
		{"a green apple", "green apple"},
		{"fried rice", "fried rice"},
		{"cream of tartar", "cream of tartar"},
		{"salt and pepper", "salt and pepper"},
		{"the substitute", ""},
		{"identify", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, engine.Clean(tt.in), "clean(%q)", tt.in)
	}
}

func TestEngine_Clean_IsIdempotent(t *testing.T) {
	engine := newTestEngine()

	inputs := []string{
		"this mushroom",
		"a green apple",
		"fried rice",
		"cream of tartar",
		"salt and pepper",
		"dark chocolate chips for",
		"the substitute",
		"",
	}
	for _, in := range inputs {
		once := engine.Clean(in)
		assert.Equal(t, once, engine.Clean(once), "clean(clean(%q))", in)
	}
}
