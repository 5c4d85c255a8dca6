package corpus

import (
	"encoding/csv"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mirepoix/v1/internal/ports/outbound"
	"github.com/mirepoix/v1/pkg/errors"
)

// nutrientUnits maps nutrient column names to display units. Nutrients
// missing from the table fall back to an empty unit.
var nutrientUnits = map[string]string{
	"calories":      "kcal",
	"protein":       "g",
	"fat":           "g",
	"saturated_fat": "g",
	"carbohydrates": "g",
	"fiber":         "g",
	"sugars":        "g",
	"sodium":        "mg",
	"cholesterol":   "mg",
	"calcium":       "mg",
	"iron":          "mg",
	"potassium":     "mg",
	"vitamin_c":     "mg",
}

// NutritionLookup resolves food queries against an in-memory index built
// from the nutrition corpus. Exact lookups are case-sensitive on the
// canonical name; fuzzy lookups clean the query and score candidates by
// token overlap.
type NutritionLookup struct {
	byName map[string]*outbound.FoodRecord
	// cleaned description and token set per record, precomputed at load
	index  []nutritionEntry
	logger *zap.Logger
}

type nutritionEntry struct {
	record  *outbound.FoodRecord
	cleaned string
	tokens  map[string]bool
}

// LoadNutritionLookup reads the nutrition corpus from a CSV file. The
// first column is the canonical food name; remaining columns are nutrient
// values parsed as floats. Negative values are coerced to null at load.
func LoadNutritionLookup(path string, logger *zap.Logger) (*NutritionLookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewInternalError("failed to open nutrition corpus").WithCause(err).WithMetadata("path", path)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.NewInternalError("failed to read nutrition corpus").WithCause(err).WithMetadata("path", path)
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, errors.NewInternalError("nutrition corpus must have a header and at least one data row")
	}

	header := records[0]
	nutrients := make([]string, 0, len(header)-1)
	for _, col := range header[1:] {
		nutrients = append(nutrients, normalizeColumn(col))
	}

	lookup := &NutritionLookup{
		byName: make(map[string]*outbound.FoodRecord, len(records)-1),
		logger: logger,
	}

	for _, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, errors.NewInternalError("nutrition corpus row width does not match header")
		}
		name := strings.TrimSpace(rec[0])
		if name == "" {
			continue
		}

		food := &outbound.FoodRecord{
			Name:      name,
			Nutrients: make(map[string]outbound.Nutrient, len(nutrients)),
		}
		for i, cell := range rec[1:] {
			nutrient := nutrients[i]
			entry := outbound.Nutrient{Unit: nutrientUnits[nutrient]}
			if v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil && v >= 0 {
				value := v
				entry.Value = &value
			}
			food.Nutrients[nutrient] = entry
		}

		cleaned := cleanFoodText(name)
		lookup.byName[name] = food
		lookup.index = append(lookup.index, nutritionEntry{
			record:  food,
			cleaned: cleaned,
			tokens:  tokenSet(cleaned),
		})
	}

	logger.Info("nutrition corpus loaded",
		zap.String("path", path),
		zap.Int("foods", len(lookup.byName)))
	return lookup, nil
}

// Exact returns the food record whose canonical name matches exactly.
func (n *NutritionLookup) Exact(name string) (*outbound.FoodRecord, bool) {
	rec, ok := n.byName[name]
	return rec, ok
}

// Fuzzy resolves a free-form food query. Candidates are filtered to those
// whose cleaned description contains the query stem (with a naive
// plural/singular fold), then ranked by token overlap. A cleaned-name
// equality or a single surviving candidate is definitive; multiple
// survivors yield a disambiguation list sorted by score descending, name
// ascending.
func (n *NutritionLookup) Fuzzy(query string) outbound.FuzzyResult {
	cleaned := cleanFoodText(query)
	if cleaned == "" {
		return outbound.FuzzyResult{}
	}
	stem := singularStem(cleaned)

	type scored struct {
		entry nutritionEntry
		score float64
	}
	var candidates []scored
	queryTokens := tokenSet(cleaned)

	for _, entry := range n.index {
		if entry.cleaned == cleaned {
			return outbound.FuzzyResult{Found: entry.record}
		}
		if !strings.Contains(entry.cleaned, stem) {
			continue
		}
		candidates = append(candidates, scored{entry: entry, score: overlapScore(queryTokens, entry.tokens)})
	}

	switch len(candidates) {
	case 0:
		return outbound.FuzzyResult{}
	case 1:
		return outbound.FuzzyResult{Found: candidates[0].entry.record}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].entry.record.Name < candidates[j].entry.record.Name
	})

	matches := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if seen[c.entry.record.Name] {
			continue
		}
		seen[c.entry.record.Name] = true
		matches = append(matches, c.entry.record.Name)
	}
	return outbound.FuzzyResult{Matches: matches}
}

// cleanFoodText lowercases and strips everything but letters, digits, and
// spaces, collapsing runs of whitespace.
func cleanFoodText(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// singularStem folds a trailing plural: "berries" -> "berr", "eggs" ->
// "egg". Applied to the last word only.
func singularStem(cleaned string) string {
	words := strings.Fields(cleaned)
	if len(words) == 0 {
		return cleaned
	}
	last := words[len(words)-1]
	switch {
	case strings.HasSuffix(last, "ies") && len(last) > 4:
		last = strings.TrimSuffix(last, "ies")
	case strings.HasSuffix(last, "es") && len(last) > 3:
		last = strings.TrimSuffix(last, "es")
	case strings.HasSuffix(last, "s") && len(last) > 3:
		last = strings.TrimSuffix(last, "s")
	}
	words[len(words)-1] = last
	return strings.Join(words, " ")
}

func tokenSet(cleaned string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(cleaned) {
		set[w] = true
	}
	return set
}

// overlapScore is the fraction of candidate tokens shared with the query,
// weighted toward shorter candidate descriptions so "carrot raw" outranks
// "carrot cake mix prepared" for the query "carrot".
func overlapScore(query, candidate map[string]bool) float64 {
	if len(candidate) == 0 {
		return 0
	}
	shared := 0
	for w := range query {
		if candidate[w] {
			shared++
		}
	}
	return float64(shared) / float64(len(candidate))
}
