package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizer_Parse_TagsCulinaryQuery(t *testing.T) {
	parser := NewTokenizer()

	parsed := parser.Parse("what can I use instead of butter")
	tokens := parsed.Tokens()
	require.Len(t, tokens, 7)

	assert.Equal(t, "PRON", tokens[0].POS)
	assert.Equal(t, "VERB", tokens[1].POS)
	assert.Equal(t, "can", tokens[1].Lemma)
	assert.Equal(t, "VERB", tokens[3].POS)
	assert.Equal(t, "use", tokens[3].Lemma)
	assert.Equal(t, "ADP", tokens[5].POS)
	assert.Equal(t, "NOUN", tokens[6].POS)
	assert.Equal(t, "butter", tokens[6].Lemma)
}

func TestTokenizer_Parse_PrepositionalObject(t *testing.T) {
	parser := NewTokenizer()

	parsed := parser.Parse("nutrition for fried rice")
	tokens := parsed.Tokens()
	require.Len(t, tokens, 4)

	// "rice" is the object of "for" and carries "fried" as a modifier
	assert.Equal(t, "pobj", tokens[3].Dep)
	assert.Equal(t, 1, tokens[3].Head)
	assert.Equal(t, "VBN", tokens[2].Tag)
	assert.Equal(t, 3, tokens[2].Head)
}

func TestTokenizer_Parse_NounChunks(t *testing.T) {
	parser := NewTokenizer()

	parsed := parser.Parse("substitutes for dark chocolate chips")
	chunks := parsed.NounChunks()
	require.Len(t, chunks, 2)

	// second chunk spans "dark chocolate chips" rooted at "chips"
	assert.Equal(t, 2, chunks[1].Start)
	assert.Equal(t, 5, chunks[1].End)
	assert.Equal(t, 4, chunks[1].Root)

	tokens := parsed.Tokens()
	assert.Equal(t, "chip", tokens[4].Lemma)
	assert.Equal(t, "pobj", tokens[4].Dep)
}

func TestTokenizer_Parse_SubtreeCollectsModifiers(t *testing.T) {
	parser := NewTokenizer()

	parsed := parser.Parse("calories in a green apple")
	chunks := parsed.NounChunks()
	require.NotEmpty(t, chunks)

	root := chunks[len(chunks)-1].Root
	subtree := parsed.Subtree(root)

	var words []string
	for _, tok := range subtree {
		words = append(words, tok.Text)
	}
	assert.Equal(t, []string{"a", "green", "apple"}, words)
}

func TestTokenizer_Parse_DirectObjectOfTriggerVerb(t *testing.T) {
	parser := NewTokenizer()

	parsed := parser.Parse("identify this mushroom")
	tokens := parsed.Tokens()
	require.Len(t, tokens, 3)

	assert.Equal(t, "ROOT", tokens[0].Dep)
	assert.Equal(t, "dobj", tokens[2].Dep)
	assert.Equal(t, 0, tokens[2].Head)
}

func TestTokenizer_Parse_Lemmatization(t *testing.T) {
	parser := NewTokenizer()

	tests := []struct {
		word  string
		lemma string
	}{
		{"berries", "berry"},
		{"eggs", "egg"},
		{"dishes", "dish"},
		{"mashed", "mash"},
		{"grass", "grass"},
	}

	for _, tt := range tests {
		parsed := parser.Parse(tt.word)
		tokens := parsed.Tokens()
		require.Len(t, tokens, 1, tt.word)
		assert.Equal(t, tt.lemma, tokens[0].Lemma, tt.word)
	}
}

func TestTokenizer_Parse_Deterministic(t *testing.T) {
	parser := NewTokenizer()
	query := "how many calories in fried rice"

	first := parser.Parse(query)
	second := parser.Parse(query)

	assert.Equal(t, first.Tokens(), second.Tokens())
	assert.Equal(t, first.NounChunks(), second.NounChunks())
}

func TestTokenizer_Parse_EmptyQuery(t *testing.T) {
	parser := NewTokenizer()

	parsed := parser.Parse("")

	assert.Empty(t, parsed.Tokens())
	assert.Empty(t, parsed.NounChunks())
	assert.Nil(t, parsed.Subtree(0))
}
