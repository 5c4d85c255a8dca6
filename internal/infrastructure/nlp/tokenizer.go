// Package nlp provides a deterministic rule-based query parser. It covers
// exactly the parse operations the intent engine consumes: part-of-speech
// tags, lemmas, dependency heads, noun chunks, and subtree walks. The
// heuristics favor short imperative and question-form culinary queries
// ("what can I use instead of butter", "calories in fried rice").
package nlp

import (
	"strings"
	"unicode"

	"github.com/mirepoix/v1/internal/ports/outbound"
)

var determiners = map[string]bool{
	"the": true, "a": true, "an": true, "this": true, "that": true,
	"these": true, "those": true, "some": true, "any": true, "my": true,
	"your": true, "our": true, "its": true, "their": true, "every": true,
}

var adpositions = map[string]bool{
	"of": true, "for": true, "in": true, "on": true, "with": true,
	"to": true, "from": true, "at": true, "by": true, "about": true,
	"without": true, "into": true, "as": true, "like": true,
}

var conjunctions = map[string]bool{
	"and": true, "or": true, "but": true, "nor": true,
}

var pronouns = map[string]bool{
	"i": true, "you": true, "he": true, "she": true, "it": true,
	"we": true, "they": true, "me": true, "him": true, "her": true,
	"us": true, "them": true, "what": true, "who": true, "which": true,
	"something": true, "anything": true,
}

var adverbs = map[string]bool{
	"how": true, "when": true, "where": true, "why": true, "not": true,
	"instead": true, "please": true, "really": true, "also": true,
}

var verbs = map[string]string{
	"is": "be", "are": "be", "am": "be", "was": "be", "were": "be",
	"be": "be", "been": "be",
	"do": "do", "does": "do", "did": "do",
	"have": "have", "has": "have", "had": "have",
	"can": "can", "could": "can", "will": "will", "would": "will",
	"should": "shall", "may": "may", "might": "may",
	"make": "make", "makes": "make", "made": "make",
	"cook": "cook", "cooks": "cook", "bake": "bake", "bakes": "bake",
	"find": "find", "tell": "tell", "give": "give", "show": "show",
	"need": "need", "needs": "need", "want": "want", "wants": "want",
	"use": "use", "replace": "replace", "substitute": "substitute",
	"swap": "swap", "identify": "identify", "classify": "classify",
	"recognize": "recognize", "know": "know", "get": "get",
	"help": "help", "look": "look", "contain": "contain",
	"contains": "contain", "eat": "eat", "prepare": "prepare",
}

var adjectives = map[string]bool{
	"good": true, "best": true, "healthy": true, "quick": true,
	"easy": true, "nutritional": true, "many": true, "much": true,
	"virgin": true, "raw": true, "dark": true, "white": true,
	"brown": true, "whole": true, "fresh": true, "extra": true,
	"heavy": true, "sour": true, "sweet": true, "bitter": true,
	"black": true, "red": true, "green": true, "unsalted": true,
	"hot": true, "cold": true, "new": true, "vegan": true,
	"vegetarian": true, "dried": true, "ground": true,
}

var numberWords = map[string]bool{
	"one": true, "two": true, "three": true, "four": true, "five": true,
	"six": true, "seven": true, "eight": true, "nine": true, "ten": true,
	"half": true, "dozen": true,
}

// Tokenizer implements outbound.QueryParser with lexicon lookups and a
// handful of suffix heuristics. Parsing is pure; the same text always
// yields the same parse.
type Tokenizer struct{}

// NewTokenizer returns the rule-based parser.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Parse tokenizes and tags the query. Punctuation is dropped; casing is
// preserved on Token.Text and folded on Token.Lemma.
func (t *Tokenizer) Parse(text string) outbound.ParsedQuery {
	words := splitWords(text)
	tokens := make([]outbound.Token, len(words))
	for i, w := range words {
		tokens[i] = tagToken(w, i)
	}

	chunks := chunkNouns(tokens)
	assignDependencies(tokens, chunks)

	return &parsedQuery{tokens: tokens, chunks: chunks}
}

type parsedQuery struct {
	tokens []outbound.Token
	chunks []outbound.NounChunk
}

func (p *parsedQuery) Tokens() []outbound.Token         { return p.tokens }
func (p *parsedQuery) NounChunks() []outbound.NounChunk { return p.chunks }

// Subtree returns token i plus every token transitively headed by it, in
// document order.
func (p *parsedQuery) Subtree(i int) []outbound.Token {
	if i < 0 || i >= len(p.tokens) {
		return nil
	}
	inTree := make([]bool, len(p.tokens))
	inTree[i] = true
	// head links only point backward or forward one relation deep, so a
	// fixed number of sweeps settles transitive membership
	for changed := true; changed; {
		changed = false
		for j, tok := range p.tokens {
			if !inTree[j] && tok.Head != j && inTree[tok.Head] {
				inTree[j] = true
				changed = true
			}
		}
	}
	var out []outbound.Token
	for j, ok := range inTree {
		if ok {
			out = append(out, p.tokens[j])
		}
	}
	return out
}

func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func tagToken(word string, index int) outbound.Token {
	lower := strings.ToLower(strings.Trim(word, "'"))
	tok := outbound.Token{Text: word, Lemma: lower, Head: index, Index: index}

	switch {
	case determiners[lower]:
		tok.POS = "DET"
	case adpositions[lower]:
		tok.POS = "ADP"
	case conjunctions[lower]:
		tok.POS = "CCONJ"
	case pronouns[lower]:
		tok.POS = "PRON"
	case adverbs[lower]:
		tok.POS = "ADV"
	case isNumeric(lower) || numberWords[lower]:
		tok.POS = "NUM"
	case verbs[lower] != "":
		tok.POS = "VERB"
		tok.Lemma = verbs[lower]
	case adjectives[lower]:
		tok.POS = "ADJ"
	case strings.HasSuffix(lower, "ed") && len(lower) > 4:
		// past participles used attributively: fried, mashed, baked
		tok.POS = "VERB"
		tok.Tag = "VBN"
		tok.Lemma = participleLemma(lower)
	default:
		tok.POS = "NOUN"
		if word != "" && unicode.IsUpper([]rune(word)[0]) && index > 0 {
			tok.POS = "PROPN"
		}
		tok.Lemma = nounLemma(lower)
	}
	return tok
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' && r != '/' {
			return false
		}
	}
	return true
}

func participleLemma(s string) string {
	base := strings.TrimSuffix(s, "ed")
	if strings.HasSuffix(base, "i") {
		return strings.TrimSuffix(base, "i") + "y"
	}
	if len(base) > 2 && base[len(base)-1] == base[len(base)-2] {
		return base[:len(base)-1]
	}
	return base
}

func nounLemma(s string) string {
	switch {
	case strings.HasSuffix(s, "ies") && len(s) > 4:
		return strings.TrimSuffix(s, "ies") + "y"
	case strings.HasSuffix(s, "sses"), strings.HasSuffix(s, "shes"), strings.HasSuffix(s, "ches"):
		return strings.TrimSuffix(s, "es")
	case strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss") && len(s) > 3:
		return strings.TrimSuffix(s, "s")
	}
	return s
}

// chunkNouns finds maximal runs of determiners, adjectives, numerals,
// attributive participles, and nouns that end in a noun. The chunk root is
// its last noun.
func chunkNouns(tokens []outbound.Token) []outbound.NounChunk {
	var chunks []outbound.NounChunk
	i := 0
	for i < len(tokens) {
		if !chunkMember(tokens[i]) {
			i++
			continue
		}
		start := i
		for i < len(tokens) && chunkMember(tokens[i]) {
			i++
		}
		// trim trailing non-nouns so the chunk ends at its root
		end := i
		for end > start && !isNounLike(tokens[end-1]) {
			end--
		}
		if end > start {
			chunks = append(chunks, outbound.NounChunk{Start: start, End: end, Root: end - 1})
		}
	}
	return chunks
}

func chunkMember(tok outbound.Token) bool {
	switch tok.POS {
	case "DET", "ADJ", "NUM", "NOUN", "PROPN":
		return true
	case "VERB":
		return tok.Tag == "VBN"
	}
	return false
}

func isNounLike(tok outbound.Token) bool {
	return tok.POS == "NOUN" || tok.POS == "PROPN"
}

// assignDependencies sets heads and relations. The scheme is shallow:
// chunk members attach to their chunk root, chunk roots attach to the
// nearest governing adposition or verb, adpositions attach to what they
// follow, and the first verb is the root of the sentence.
func assignDependencies(tokens []outbound.Token, chunks []outbound.NounChunk) {
	rootVerb := -1
	for i, tok := range tokens {
		if tok.POS == "VERB" && tok.Tag != "VBN" {
			rootVerb = i
			break
		}
	}

	for i := range tokens {
		switch tokens[i].POS {
		case "VERB":
			if tokens[i].Tag == "VBN" {
				continue
			}
			if i == rootVerb {
				tokens[i].Dep = "ROOT"
				tokens[i].Head = i
			} else {
				tokens[i].Dep = "aux"
				tokens[i].Head = rootVerb
			}
		case "ADP":
			tokens[i].Dep = "prep"
			tokens[i].Head = i
			for j := i - 1; j >= 0; j-- {
				if tokens[j].POS == "VERB" || isNounLike(tokens[j]) {
					tokens[i].Head = j
					break
				}
			}
		case "CCONJ":
			tokens[i].Dep = "cc"
		case "PRON":
			tokens[i].Dep = "nsubj"
			if rootVerb >= 0 {
				tokens[i].Head = rootVerb
			}
		case "ADV":
			tokens[i].Dep = "advmod"
			if rootVerb >= 0 {
				tokens[i].Head = rootVerb
			}
		}
	}

	for _, chunk := range chunks {
		root := chunk.Root
		for i := chunk.Start; i < chunk.End; i++ {
			if i == root {
				continue
			}
			tokens[i].Head = root
			switch tokens[i].POS {
			case "DET":
				tokens[i].Dep = "det"
			case "NUM":
				tokens[i].Dep = "nummod"
			case "NOUN", "PROPN":
				tokens[i].Dep = "compound"
			default:
				tokens[i].Dep = "amod"
			}
		}

		// attach the root to its governor
		governed := false
		for j := chunk.Start - 1; j >= 0; j-- {
			if tokens[j].POS == "ADP" {
				tokens[root].Dep = "pobj"
				tokens[root].Head = j
				governed = true
			} else if tokens[j].POS == "VERB" && tokens[j].Tag != "VBN" {
				tokens[root].Dep = "dobj"
				tokens[root].Head = j
				governed = true
			} else if tokens[j].POS == "CCONJ" {
				continue
			}
			break
		}
		if !governed {
			if rootVerb >= 0 {
				tokens[root].Dep = "dobj"
				tokens[root].Head = rootVerb
			} else {
				tokens[root].Dep = "ROOT"
				tokens[root].Head = root
			}
		}
	}
}
