// Package chat implements the conversational core: the intent engine
// that classifies a query and extracts its food entity, and the response
// composer that turns a resolved turn into a reply.
package chat

import "strings"

// Keywords holds the configured trigger lists for intent resolution.
// All entries are lowercase; multi-word entries match by containment,
// single words by whole-token presence.
type Keywords struct {
	Greeting    []string
	WebsiteInfo []string
	WhoAreYou   []string
	Classify    []string
	Substitute  []string
	Nutrition   []string

	// HowToGeneral are generic ask-phrases ("how to", "can i") that
	// license a contained topic phrase as a how-to intent.
	HowToGeneral []string
	// HowToTopics maps a topic key to the phrases that select it.
	HowToTopics map[string][]string

	// entityStops are stripped from the edges of an extracted entity in
	// addition to every intent keyword.
	entityStops map[string]bool
}

// DefaultKeywords returns the built-in trigger configuration.
func DefaultKeywords() *Keywords {
	kw := &Keywords{
		Greeting: []string{
			"hello", "hi", "hey", "greetings",
			"good morning", "good afternoon", "good evening",
		},
		WebsiteInfo: []string{
			"website", "site",
			"what is this website", "what is this site",
			"about this site", "what does this site do",
		},
		WhoAreYou: []string{
			"who are you", "what are you", "your name",
		},
		Classify: []string{
			"identify", "classify", "recognize",
			"what is this", "what's this", "what kind of", "what food is",
		},
		Substitute: []string{
			"substitute", "substitutes", "substitution",
			"replacement", "replace", "alternative", "instead of",
		},
		Nutrition: []string{
			"nutrition", "nutritional", "nutrients", "macros",
			"calories", "calorie", "how many calories", "nutrition facts",
		},
		HowToGeneral: []string{
			"how to", "how do i", "how can i", "can i", "how does",
		},
		HowToTopics: map[string][]string{
			"meal_planner": {
				"meal planner", "meal plan", "meal planning", "plan meals", "plan my meals",
			},
			"upload_recipe": {
				"upload a recipe", "upload recipe", "add a recipe", "add recipe", "submit a recipe",
			},
			"find_recipes": {
				"find recipes", "find a recipe", "search recipes", "search for recipes", "browse recipes",
			},
			"create_account": {
				"create an account", "create account", "sign up", "register",
			},
		},
	}
	kw.entityStops = buildEntityStops(kw)
	return kw
}

// buildEntityStops combines every single-word intent keyword with a small
// closed set of determiners, short prepositions, and filler verbs.
func buildEntityStops(kw *Keywords) map[string]bool {
	stops := map[string]bool{
		"a": true, "an": true, "the": true, "this": true, "that": true,
		"these": true, "those": true, "some": true, "any": true, "my": true,
		"for": true, "of": true, "in": true, "on": true, "to": true, "with": true,
		"is": true, "are": true, "be": true, "can": true, "could": true,
		"do": true, "does": true, "use": true, "get": true, "find": true,
		"tell": true, "me": true, "i": true, "you": true, "please": true,
		"what": true, "whats": true, "how": true, "many": true, "much": true,
		"instead": true,
	}
	lists := [][]string{
		kw.Greeting, kw.WebsiteInfo, kw.WhoAreYou,
		kw.Classify, kw.Substitute, kw.Nutrition, kw.HowToGeneral,
	}
	for _, list := range lists {
		for _, phrase := range list {
			for _, word := range strings.Fields(phrase) {
				stops[word] = true
			}
		}
	}
	return stops
}

// substituteHeads and nutritionHeads are the single-word triggers used to
// walk from a keyword to its adjacent preposition during extraction.
var substituteHeads = map[string]bool{
	"substitute": true, "substitution": true, "replacement": true,
	"replace": true, "alternative": true, "instead": true,
}

var nutritionHeads = map[string]bool{
	"nutrition": true, "nutritional": true, "nutrient": true,
	"calorie": true, "calories": true, "calory": true,
	"macro": true, "fact": true,
}

var classifyVerbs = map[string]bool{
	"identify": true, "classify": true, "recognize": true,
}

// entityPrepositions are the prepositions that can head an extracted
// object ("substitutes FOR butter", "calories IN rice").
var entityPrepositions = map[string]bool{
	"for": true, "of": true, "in": true,
}

func (k *Keywords) isStop(word string) bool {
	return k.entityStops[strings.ToLower(word)]
}

// isKeywordPhrase reports whether the text equals any configured keyword,
// used to exclude keyword-only noun chunks from entity candidates.
func (k *Keywords) isKeywordPhrase(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	lists := [][]string{
		k.Greeting, k.WebsiteInfo, k.WhoAreYou,
		k.Classify, k.Substitute, k.Nutrition, k.HowToGeneral,
	}
	for _, list := range lists {
		for _, phrase := range list {
			if text == phrase {
				return true
			}
		}
	}
	return false
}

// anyMatch reports whether any keyword is present in the query. Multi-word
// keywords match by substring; single words must appear as a whole token.
func anyMatch(query string, words map[string]bool, keywords []string) bool {
	for _, keyword := range keywords {
		if matchKeyword(query, words, keyword) {
			return true
		}
	}
	return false
}

// exactOrContained matches a keyword either as the entire query or, for
// multi-word keywords, by containment. Used for website-info and
// who-are-you so a stray "site" in a food name does not hijack the query.
func exactOrContained(query string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(keyword, " ") {
			if strings.Contains(query, keyword) {
				return true
			}
		} else if query == keyword {
			return true
		}
	}
	return false
}

func matchKeyword(query string, words map[string]bool, keyword string) bool {
	if strings.Contains(keyword, " ") {
		return strings.Contains(query, keyword)
	}
	return words[keyword]
}

// tokenSet splits a normalized query into a word-presence set.
func tokenSet(query string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(query) {
		words[strings.Trim(w, ".,!?;:'\"")] = true
	}
	return words
}
