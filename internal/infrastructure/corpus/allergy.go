// Package corpus implements the read-only tabular corpora backing allergy
// detection, nutrition lookup, and substitution recommendations. Every
// corpus is loaded once at startup and shared between workers without
// locks; a malformed or missing corpus fails the load, runtime lookups
// never fail.
package corpus

import (
	"encoding/csv"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mirepoix/v1/pkg/errors"
)

// AllergyAnalyzer maps ingredient names to allergen tags by substring
// matching over a table keyed by food name with one boolean column per
// allergen.
//
// Substring matching is intentionally loose: "egg" matches "eggplant".
// WholeWord tightens matching to word boundaries at the cost of recall.
type AllergyAnalyzer struct {
	rows      []allergyRow
	allergens []string
	wholeWord bool
	logger    *zap.Logger
}

type allergyRow struct {
	food     string
	presence []bool
}

// AllergyOption configures the analyzer at load time.
type AllergyOption func(*AllergyAnalyzer)

// WithWholeWordMatching restricts food-name matches to whole words within
// the ingredient name.
func WithWholeWordMatching() AllergyOption {
	return func(a *AllergyAnalyzer) { a.wholeWord = true }
}

// LoadAllergyAnalyzer reads the allergy corpus from a CSV file. The first
// column holds the food name; every remaining column is an allergen whose
// header is normalized (lowercase, spaces to underscores). Cell values of
// "1", "true", or "yes" mark the allergen present.
func LoadAllergyAnalyzer(path string, logger *zap.Logger, opts ...AllergyOption) (*AllergyAnalyzer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewInternalError("failed to open allergy corpus").WithCause(err).WithMetadata("path", path)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.NewInternalError("failed to read allergy corpus").WithCause(err).WithMetadata("path", path)
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, errors.NewInternalError("allergy corpus must have a header and at least one data row")
	}

	header := records[0]
	allergens := make([]string, 0, len(header)-1)
	for _, col := range header[1:] {
		allergens = append(allergens, normalizeColumn(col))
	}

	analyzer := &AllergyAnalyzer{
		allergens: allergens,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(analyzer)
	}

	for _, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, errors.NewInternalError("allergy corpus row width does not match header")
		}
		row := allergyRow{
			food:     normalizeFood(rec[0]),
			presence: make([]bool, len(allergens)),
		}
		for i, cell := range rec[1:] {
			row.presence[i] = truthy(cell)
		}
		analyzer.rows = append(analyzer.rows, row)
	}

	logger.Info("allergy corpus loaded",
		zap.String("path", path),
		zap.Int("foods", len(analyzer.rows)),
		zap.Int("allergens", len(allergens)))
	return analyzer, nil
}

// AllergensFor returns the deduplicated, sorted allergen set from every
// corpus row whose food name occurs in the ingredient name.
func (a *AllergyAnalyzer) AllergensFor(ingredientName string) []string {
	name := normalizeFood(ingredientName)
	if name == "" {
		return nil
	}

	found := make(map[string]bool)
	for _, row := range a.rows {
		if !a.matches(name, row.food) {
			continue
		}
		for i, present := range row.presence {
			if present {
				found[a.allergens[i]] = true
			}
		}
	}
	if len(found) == 0 {
		return nil
	}

	out := make([]string, 0, len(found))
	for allergen := range found {
		out = append(out, allergen)
	}
	sort.Strings(out)
	return out
}

func (a *AllergyAnalyzer) matches(ingredientName, food string) bool {
	if food == "" {
		return false
	}
	if !a.wholeWord {
		return strings.Contains(ingredientName, food)
	}
	for _, word := range strings.Fields(ingredientName) {
		if word == food {
			return true
		}
	}
	return false
}

func normalizeColumn(col string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(col)), " ", "_")
}

func normalizeFood(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func truthy(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}
