package chat

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mirepoix/v1/internal/domain/chat"
	"github.com/mirepoix/v1/internal/ports/outbound"
)

// Engine resolves a query to an intent and its entities. Resolution is
// purely rule based and deterministic: the same text and image flag always
// produce the same turn.
type Engine struct {
	parser outbound.QueryParser
	kw     *Keywords
	logger *zap.Logger
}

// NewEngine creates the intent engine.
func NewEngine(parser outbound.QueryParser, kw *Keywords, logger *zap.Logger) *Engine {
	if kw == nil {
		kw = DefaultKeywords()
	}
	return &Engine{
		parser: parser,
		kw:     kw,
		logger: logger.Named("intent"),
	}
}

// Resolve classifies the query. It never fails on well-formed input;
// anything unrecognized falls through to IntentUnknown.
func (e *Engine) Resolve(text string, imageProvided bool) (chat.Intent, chat.Entities) {
	query := normalizeQuery(text)
	words := tokenSet(query)
	wordCount := len(strings.Fields(query))

	// an attached image short-circuits to classification, optionally
	// chaining a follow-up on the top prediction
	if imageProvided {
		switch {
		case anyMatch(query, words, e.kw.Nutrition):
			return chat.IntentClassifyImage, chat.Entities{SecondaryIntent: chat.IntentNutrition}
		case anyMatch(query, words, e.kw.Substitute):
			return chat.IntentClassifyImage, chat.Entities{SecondaryIntent: chat.IntentSubstitutes}
		case anyMatch(query, words, e.kw.Classify) || wordCount <= 3:
			return chat.IntentClassifyImage, chat.Entities{}
		}
	}

	switch {
	case exactOrContained(query, e.kw.WebsiteInfo):
		return chat.IntentWebsiteInfo, chat.Entities{}
	case exactOrContained(query, e.kw.WhoAreYou):
		return chat.IntentWhoAreYou, chat.Entities{}
	case anyMatch(query, words, e.kw.Greeting):
		return chat.IntentGreeting, chat.Entities{}
	case anyMatch(query, words, e.kw.Classify):
		return chat.IntentClassifyFood, chat.Entities{FoodItem: e.extractEntity(text, chat.IntentClassifyFood)}
	case anyMatch(query, words, e.kw.Substitute):
		return chat.IntentSubstitutes, chat.Entities{FoodItem: e.extractEntity(text, chat.IntentSubstitutes)}
	case anyMatch(query, words, e.kw.Nutrition):
		return chat.IntentNutrition, chat.Entities{FoodItem: e.extractEntity(text, chat.IntentNutrition)}
	}

	if topic, ok := e.howToTopic(query, wordCount); ok {
		return chat.IntentHowTo, chat.Entities{HowToTopic: topic}
	}
	return chat.IntentUnknown, chat.Entities{}
}

// howToTopic matches a topic phrase either exactly or by containment when
// the query also carries a general how-to keyword or is short enough to be
// a bare topic mention. Topics are checked in sorted order so resolution
// stays deterministic when phrases from several topics appear.
func (e *Engine) howToTopic(query string, wordCount int) (string, bool) {
	topics := make([]string, 0, len(e.kw.HowToTopics))
	for topic := range e.kw.HowToTopics {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	for _, topic := range topics {
		for _, phrase := range e.kw.HowToTopics[topic] {
			if query == phrase {
				return topic, true
			}
		}
	}

	general := false
	for _, keyword := range e.kw.HowToGeneral {
		if strings.Contains(query, keyword) {
			general = true
			break
		}
	}
	if !general && wordCount > 4 {
		return "", false
	}
	for _, topic := range topics {
		for _, phrase := range e.kw.HowToTopics[topic] {
			if strings.Contains(query, phrase) {
				return topic, true
			}
		}
	}
	return "", false
}

// extractEntity pulls the food item out of the original-case query using
// the dependency parse, then cleans it. An empty result means no entity.
func (e *Engine) extractEntity(text string, intent chat.Intent) string {
	parsed := e.parser.Parse(text)
	tokens := parsed.Tokens()
	if len(tokens) == 0 {
		return ""
	}

	var raw string
	switch intent {
	case chat.IntentClassifyFood:
		raw = objectOfTriggerVerb(parsed, tokens)
	case chat.IntentSubstitutes:
		raw = objectOfPreposition(parsed, tokens, substituteHeads)
	case chat.IntentNutrition:
		raw = objectOfPreposition(parsed, tokens, nutritionHeads)
	}
	if raw == "" {
		raw = e.chunkByDependency(parsed, tokens, intent)
	}
	if raw == "" {
		raw = e.longestChunk(parsed, tokens)
	}
	return e.Clean(raw)
}

// objectOfTriggerVerb finds the direct object of a classify verb,
// descending through an attached "of" when present ("a picture of X").
func objectOfTriggerVerb(parsed outbound.ParsedQuery, tokens []outbound.Token) string {
	for i, tok := range tokens {
		if tok.POS != "VERB" || !classifyVerbs[tok.Lemma] {
			continue
		}
		for j, obj := range tokens {
			if obj.Dep != "dobj" || obj.Head != i {
				continue
			}
			if pobj := pobjThroughOf(tokens, j); pobj >= 0 {
				return joinTokens(parsed.Subtree(pobj))
			}
			return joinTokens(parsed.Subtree(j))
		}
	}
	return ""
}

// objectOfPreposition walks from a trigger keyword to an adjacent
// preposition and takes its object subtree ("substitutes FOR dark
// chocolate", "calories IN rice").
func objectOfPreposition(parsed outbound.ParsedQuery, tokens []outbound.Token, heads map[string]bool) string {
	for i, tok := range tokens {
		if !heads[tok.Lemma] && !heads[strings.ToLower(tok.Text)] {
			continue
		}
		if i+1 >= len(tokens) {
			continue
		}
		prep := tokens[i+1]
		if prep.POS != "ADP" || !entityPrepositions[prep.Lemma] {
			continue
		}
		if pobj := childWithDep(tokens, i+1, "pobj"); pobj >= 0 {
			return joinTokens(parsed.Subtree(pobj))
		}
	}
	return ""
}

// chunkByDependency scans noun chunks whose root dependency fits the
// intent, skipping chunks that are nothing but a keyword.
func (e *Engine) chunkByDependency(parsed outbound.ParsedQuery, tokens []outbound.Token, intent chat.Intent) string {
	for _, chunk := range parsed.NounChunks() {
		root := tokens[chunk.Root]
		var fits bool
		switch intent {
		case chat.IntentClassifyFood:
			fits = root.Dep == "dobj"
		case chat.IntentSubstitutes, chat.IntentNutrition:
			fits = root.Dep == "pobj" &&
				root.Head >= 0 && root.Head < len(tokens) &&
				tokens[root.Head].POS == "ADP" &&
				entityPrepositions[tokens[root.Head].Lemma]
		}
		if !fits {
			continue
		}
		text := chunkText(tokens, chunk)
		if e.kw.isKeywordPhrase(text) {
			continue
		}
		return text
	}
	return ""
}

// longestChunk takes the longest noun chunk that is not itself a keyword.
// Ties resolve to the earliest chunk.
func (e *Engine) longestChunk(parsed outbound.ParsedQuery, tokens []outbound.Token) string {
	best := ""
	bestLen := 0
	for _, chunk := range parsed.NounChunks() {
		text := chunkText(tokens, chunk)
		if e.kw.isKeywordPhrase(text) {
			continue
		}
		if size := chunk.End - chunk.Start; size > bestLen {
			best = text
			bestLen = size
		}
	}
	return best
}

// Clean normalizes an extracted entity: strip stop words from the edges,
// re-parse, and keep only content tokens plus internal connectives. The
// operation is idempotent; an entity with no noun left is deleted.
func (e *Engine) Clean(entity string) string {
	words := strings.Fields(entity)
	for len(words) > 0 && e.kw.isStop(trimPunct(words[0])) {
		words = words[1:]
	}
	for len(words) > 0 && e.kw.isStop(trimPunct(words[len(words)-1])) {
		words = words[:len(words)-1]
	}
	if len(words) == 0 {
		return ""
	}

	tokens := e.parser.Parse(strings.Join(words, " ")).Tokens()
	first, last := -1, -1
	for i, tok := range tokens {
		if isContentToken(tok) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return ""
	}

	var kept []outbound.Token
	hasNoun := false
	for i := first; i <= last; i++ {
		tok := tokens[i]
		switch {
		case isContentToken(tok):
			kept = append(kept, tok)
			if tok.POS == "NOUN" || tok.POS == "PROPN" {
				hasNoun = true
			}
		case tok.POS == "CCONJ" || tok.POS == "DET" || tok.POS == "ADP":
			// internal connectives survive ("cream of tartar",
			// "salt and pepper"); everything else is dropped
			kept = append(kept, tok)
		}
	}
	if !hasNoun {
		return ""
	}
	return joinTokens(kept)
}

func isContentToken(tok outbound.Token) bool {
	switch tok.POS {
	case "NOUN", "PROPN", "ADJ", "NUM":
		return true
	}
	return tok.Tag == "VBN"
}

// pobjThroughOf descends from a token through an attached "of" to its
// prepositional object, returning -1 when the pattern is absent.
func pobjThroughOf(tokens []outbound.Token, head int) int {
	for i, tok := range tokens {
		if tok.POS == "ADP" && tok.Lemma == "of" && tok.Head == head {
			return childWithDep(tokens, i, "pobj")
		}
	}
	return -1
}

func childWithDep(tokens []outbound.Token, head int, dep string) int {
	for i, tok := range tokens {
		if tok.Head == head && tok.Dep == dep {
			return i
		}
	}
	return -1
}

func chunkText(tokens []outbound.Token, chunk outbound.NounChunk) string {
	return joinTokens(tokens[chunk.Start:chunk.End])
}

func joinTokens(tokens []outbound.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.Text
	}
	return strings.Join(parts, " ")
}

// normalizeQuery lowercases the query and strips per-word punctuation so
// keyword containment is stable against trailing question marks.
func normalizeQuery(text string) string {
	fields := strings.Fields(strings.ToLower(text))
	for i, f := range fields {
		fields[i] = trimPunct(f)
	}
	return strings.Join(fields, " ")
}

func trimPunct(word string) string {
	return strings.Trim(word, ".,!?;:'\"")
}
