package chat

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mirepoix/v1/internal/domain/chat"
	"github.com/mirepoix/v1/internal/ports/outbound"
)

// Canonical replies for the static intents.
const (
	msgGreeting = "Hello! I'm the Mirepoix kitchen assistant. Ask me about nutrition, " +
		"ingredient substitutes, or send me a food photo and I'll identify it."
	msgWebsiteInfo = "Mirepoix helps you save recipes, plan your meals, and answer cooking " +
		"questions. Paste a recipe to add it to your collection, or ask me about any ingredient."
	msgWhoAreYou = "I'm Mirepoix, your culinary assistant. I can identify foods from photos, " +
		"look up nutrition facts, and suggest ingredient substitutes."
	msgUnknown = "I'm not sure I understood that. You can ask about nutrition, substitutes, " +
		"or how to use the site, or send me a food photo."

	msgImageRequired  = "I need a photo to identify a food. Attach an image and try again."
	msgClassifierDown = "Image classification isn't available right now. Please try again later."
	msgClassifyFailed = "I couldn't identify the food in that image."
	msgHowToGeneric   = "I can help with the meal planner, uploading recipes, finding recipes, " +
		"or creating an account. Could you be more specific?"

	assistantAvatarURL = "/static/img/mirepoix-bot.png"
)

// howToLink is a fixed reply triple for one help topic.
type howToLink struct {
	response string
	linkText string
	linkURL  string
}

var howToLinks = map[string]howToLink{
	"meal_planner": {
		response: "You can plan your week's meals with the meal planner.",
		linkText: "Open Meal Planner",
		linkURL:  "/meal-planner",
	},
	"upload_recipe": {
		response: "You can add your own recipes from the upload page.",
		linkText: "Upload a Recipe",
		linkURL:  "/recipes/upload",
	},
	"find_recipes": {
		response: "You can browse and search all public recipes.",
		linkText: "Find Recipes",
		linkURL:  "/recipes",
	},
	"create_account": {
		response: "You can create a free account to save recipes and meal plans.",
		linkText: "Sign Up",
		linkURL:  "/signup",
	},
}

// curatedNutrients is the fixed display subset, in order. Alternate keys
// absorb corpus naming drift.
var curatedNutrients = []struct {
	label string
	keys  []string
}{
	{"Calories", []string{"calories", "energy"}},
	{"Protein", []string{"protein"}},
	{"Fat", []string{"fat", "total_fat"}},
	{"Carbs", []string{"carbohydrates", "carbs"}},
	{"Fiber", []string{"fiber", "dietary_fiber"}},
	{"Sugars", []string{"sugars", "sugar"}},
}

// Composer turns a resolved turn into a reply. External calls are caught
// per branch and substituted with a friendly message; Compose never fails.
type Composer struct {
	nutrition  outbound.NutritionLookup
	subs       outbound.SubstitutionRecommender
	classifier outbound.ImageClassifier
	topK       int
	maxSubs    int
	logger     *zap.Logger
}

// NewComposer creates the response composer. topK bounds the predictions
// shown for an image; maxSubs bounds substitute lists.
func NewComposer(
	nutrition outbound.NutritionLookup,
	subs outbound.SubstitutionRecommender,
	classifier outbound.ImageClassifier,
	topK, maxSubs int,
	logger *zap.Logger,
) *Composer {
	if topK <= 0 {
		topK = 3
	}
	if maxSubs <= 0 {
		maxSubs = 5
	}
	return &Composer{
		nutrition:  nutrition,
		subs:       subs,
		classifier: classifier,
		topK:       topK,
		maxSubs:    maxSubs,
		logger:     logger.Named("composer"),
	}
}

// Compose dispatches on the turn's intent.
func (c *Composer) Compose(ctx context.Context, turn chat.Turn) *chat.Reply {
	switch turn.Intent {
	case chat.IntentClassifyImage:
		return c.classifyImage(ctx, turn)
	case chat.IntentClassifyFood:
		return c.classifyFoodItem(turn.Entities.FoodItem)
	case chat.IntentSubstitutes:
		return c.substitutes(turn.Entities.FoodItem)
	case chat.IntentNutrition:
		return c.nutritionalInfo(turn.Entities.FoodItem)
	case chat.IntentHowTo:
		return c.howTo(turn.Entities.HowToTopic)
	case chat.IntentGreeting:
		return &chat.Reply{Response: msgGreeting}
	case chat.IntentWebsiteInfo:
		return &chat.Reply{Response: msgWebsiteInfo}
	case chat.IntentWhoAreYou:
		return &chat.Reply{Response: msgWhoAreYou, ImageURL: assistantAvatarURL}
	default:
		return &chat.Reply{Response: msgUnknown}
	}
}

func (c *Composer) classifyImage(ctx context.Context, turn chat.Turn) *chat.Reply {
	if turn.ImagePath == "" {
		return &chat.Reply{Response: msgImageRequired}
	}
	if c.classifier == nil || !c.classifier.Ready() {
		return &chat.Reply{Response: msgClassifierDown}
	}

	preds, err := c.classifier.Predict(ctx, turn.ImagePath)
	if err != nil || len(preds) == 0 {
		if err != nil {
			c.logger.Warn("image classification failed", zap.Error(err))
		}
		return &chat.Reply{Response: msgClassifyFailed}
	}

	top := preds[0]
	parts := []string{
		fmt.Sprintf("Classified as '%s' (%d%%).", displayName(top.Name), percent(top.Confidence)),
	}
	if len(preds) > 1 {
		var others []string
		for _, p := range preds[1:] {
			if len(others) >= c.topK-1 {
				break
			}
			others = append(others, fmt.Sprintf("%s (%d%%)", displayName(p.Name), percent(p.Confidence)))
		}
		if len(others) > 0 {
			parts = append(parts, "Other possibilities: "+strings.Join(others, ", ")+".")
		}
	}

	switch turn.Entities.SecondaryIntent {
	case chat.IntentNutrition:
		parts = append(parts, c.chainNutrition(displayName(top.Name)))
	case chat.IntentSubstitutes:
		parts = append(parts, c.chainSubstitutes(displayName(top.Name)))
	}
	return &chat.Reply{Response: strings.Join(parts, " ")}
}

// chainNutrition appends a nutrition sentence for the top prediction,
// falling back from an exact hit to a definitive fuzzy match.
func (c *Composer) chainNutrition(name string) string {
	rec, ok := c.lookupFood(name)
	if !ok {
		return fmt.Sprintf("I couldn't find nutritional info for %s.", name)
	}
	return fmt.Sprintf("Nutritional info for %s: %s", rec.Name, formatNutrients(rec))
}

func (c *Composer) chainSubstitutes(name string) string {
	list := c.subs.SubstitutesFor(c.subs.Normalize(name), c.maxSubs)
	if len(list) == 0 {
		return fmt.Sprintf("I couldn't find any substitutes for %s.", name)
	}
	return fmt.Sprintf("Substitutes for %s: %s.", name, formatSubstitutes(list))
}

func (c *Composer) classifyFoodItem(food string) *chat.Reply {
	if food == "" {
		return &chat.Reply{Response: "Which food would you like me to identify?"}
	}
	rec, ok := c.lookupFood(food)
	if !ok {
		return &chat.Reply{Response: fmt.Sprintf(
			"I don't recognize '%s'. You can send me a photo and I'll try to identify it.", food)}
	}
	return &chat.Reply{Response: fmt.Sprintf(
		"That looks like %s. Nutritional info for %s: %s", rec.Name, rec.Name, formatNutrients(rec))}
}

func (c *Composer) substitutes(food string) *chat.Reply {
	if food == "" {
		return &chat.Reply{Response: "Which ingredient do you need a substitute for?"}
	}
	list := c.subs.SubstitutesFor(c.subs.Normalize(food), c.maxSubs)
	if len(list) == 0 {
		return &chat.Reply{Response: fmt.Sprintf("I couldn't find any substitutes for '%s'.", food)}
	}
	return &chat.Reply{Response: fmt.Sprintf("Substitutes for %s: %s.", food, formatSubstitutes(list))}
}

func (c *Composer) nutritionalInfo(food string) *chat.Reply {
	if food == "" {
		return &chat.Reply{Response: "Which food would you like nutritional information for?"}
	}
	result := c.nutrition.Fuzzy(food)
	switch {
	case result.Found != nil:
		return &chat.Reply{Response: fmt.Sprintf(
			"Nutritional info for %s: %s", result.Found.Name, formatNutrients(result.Found))}
	case len(result.Matches) > 0:
		return &chat.Reply{
			Response:              fmt.Sprintf("I found a few matches for '%s'. Which one did you mean?", food),
			DisambiguationMatches: result.Matches,
		}
	default:
		return &chat.Reply{Response: fmt.Sprintf("I couldn't find nutritional information for '%s'.", food)}
	}
}

func (c *Composer) howTo(topic string) *chat.Reply {
	link, ok := howToLinks[topic]
	if !ok {
		return &chat.Reply{Response: msgHowToGeneric}
	}
	return &chat.Reply{
		Response: link.response,
		LinkText: link.linkText,
		LinkURL:  link.linkURL,
	}
}

// lookupFood resolves a food name to a record: exact hit first, then a
// definitive fuzzy match. Ambiguous fuzzy results count as a miss here;
// disambiguation is only offered on the direct nutrition intent.
func (c *Composer) lookupFood(name string) (*outbound.FoodRecord, bool) {
	if rec, ok := c.nutrition.Exact(name); ok {
		return rec, true
	}
	if result := c.nutrition.Fuzzy(name); result.Found != nil {
		return result.Found, true
	}
	return nil, false
}

// formatNutrients renders the curated nutrient subset, e.g.
// "Calories: 52kcal, Protein: 0.3g (approx. per 100g)".
func formatNutrients(rec *outbound.FoodRecord) string {
	var parts []string
	for _, cur := range curatedNutrients {
		for _, key := range cur.keys {
			n, ok := rec.Nutrients[key]
			if !ok || n.Value == nil {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s: %s%s", cur.label, formatAmount(*n.Value), n.Unit))
			break
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("I have a record for '%s' but no detailed nutrient data.", rec.Name)
	}
	return strings.Join(parts, ", ") + " (approx. per 100g)"
}

func formatSubstitutes(list []outbound.Substitute) string {
	parts := make([]string, len(list))
	for i, s := range list {
		parts[i] = fmt.Sprintf("%s (Score: %.2f)", s.Name, s.Score)
	}
	return strings.Join(parts, ", ")
}

// formatAmount coerces whole-valued floats to integers.
func formatAmount(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e9 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// percent renders a confidence in [0,1] as an integer percentage.
func percent(confidence float64) int {
	return int(math.Round(confidence * 100))
}

// displayName converts a classifier label to user form: underscores to
// spaces, each word title-cased.
func displayName(label string) string {
	words := strings.Fields(strings.ReplaceAll(label, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
