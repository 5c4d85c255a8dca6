package corpus

import (
	"encoding/csv"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mirepoix/v1/internal/ports/outbound"
	"github.com/mirepoix/v1/pkg/errors"
)

// culinaryAdjectives are adjectives that distinguish ingredients and must
// survive normalization ("virgin olive oil" is not "olive oil").
var culinaryAdjectives = map[string]bool{
	"virgin":   true,
	"extra":    true,
	"raw":      true,
	"dark":     true,
	"white":    true,
	"brown":    true,
	"whole":    true,
	"fresh":    true,
	"dried":    true,
	"ground":   true,
	"heavy":    true,
	"sour":     true,
	"sweet":    true,
	"bitter":   true,
	"black":    true,
	"red":      true,
	"green":    true,
	"unsalted": true,
}

// SubstitutionRecommender suggests replacement ingredients mined from a
// symmetric pair table. Partner counts act as frequency weights; scores
// are normalized so the most frequent partner scores 1.0.
type SubstitutionRecommender struct {
	// partners maps a normalized ingredient to partner occurrence counts,
	// built from both directions of the pair table
	partners map[string]map[string]int
	parser   outbound.QueryParser
	logger   *zap.Logger
}

// LoadSubstitutionRecommender reads the substitution corpus from a CSV
// file with columns (ingredient, substitute). The parser drives query
// normalization; a nil parser leaves the recommender not ready, in which
// case every lookup returns an empty list with a warning.
func LoadSubstitutionRecommender(path string, parser outbound.QueryParser, logger *zap.Logger) (*SubstitutionRecommender, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewInternalError("failed to open substitution corpus").WithCause(err).WithMetadata("path", path)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.NewInternalError("failed to read substitution corpus").WithCause(err).WithMetadata("path", path)
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, errors.NewInternalError("substitution corpus must have a header and at least one data row")
	}

	rec := &SubstitutionRecommender{
		partners: make(map[string]map[string]int),
		parser:   parser,
		logger:   logger,
	}

	for _, row := range records[1:] {
		if len(row) < 2 {
			return nil, errors.NewInternalError("substitution corpus row must have two columns")
		}
		a := normalizeFood(row[0])
		b := normalizeFood(row[1])
		if a == "" || b == "" || a == b {
			continue
		}
		rec.addPair(a, b)
		rec.addPair(b, a)
	}

	logger.Info("substitution corpus loaded",
		zap.String("path", path),
		zap.Int("ingredients", len(rec.partners)))
	return rec, nil
}

func (s *SubstitutionRecommender) addPair(from, to string) {
	m, ok := s.partners[from]
	if !ok {
		m = make(map[string]int)
		s.partners[from] = m
	}
	m[to]++
}

// Normalize reduces free ingredient text to its canonical form: noun
// lemmas plus whitelisted culinary adjectives, in document order. An empty
// result falls back to the lowercased raw text.
func (s *SubstitutionRecommender) Normalize(ingredientText string) string {
	raw := normalizeFood(ingredientText)
	if s.parser == nil {
		return raw
	}

	parsed := s.parser.Parse(ingredientText)
	var kept []string
	for _, tok := range parsed.Tokens() {
		lemma := strings.ToLower(tok.Lemma)
		switch tok.POS {
		case "NOUN", "PROPN":
			kept = append(kept, lemma)
		case "ADJ":
			if culinaryAdjectives[lemma] {
				kept = append(kept, lemma)
			}
		}
	}
	if len(kept) == 0 {
		return raw
	}
	return strings.Join(kept, " ")
}

// SubstitutesFor returns up to topN ranked substitutes for the ingredient.
// Scores are occurrence counts divided by the maximum count; ties break by
// name ascending. Lookups never fail: unknown ingredients and a not-ready
// recommender both yield an empty list.
func (s *SubstitutionRecommender) SubstitutesFor(ingredientText string, topN int) []outbound.Substitute {
	if s.parser == nil {
		s.logger.Warn("substitution recommender not ready, returning no substitutes")
		return nil
	}
	if topN <= 0 {
		return nil
	}

	counts := s.partners[s.Normalize(ingredientText)]
	if len(counts) == 0 {
		return nil
	}

	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}

	out := make([]outbound.Substitute, 0, len(counts))
	for name, c := range counts {
		out = append(out, outbound.Substitute{Name: name, Score: float64(c) / float64(max)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})

	if len(out) > topN {
		out = out[:topN]
	}
	return out
}
