// Package ingredient contains the canonical ingredient and allergen entities.
// Ingredients are unique by normalized name and own a monotonically growing
// set of allergen links.
package ingredient

import (
	"strings"

	"github.com/google/uuid"
)

// NormalizeName produces the canonical form an ingredient is keyed by:
// lowercase, whitespace-trimmed.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Allergen is a tag indicating an allergy or intolerance class (dairy,
// gluten, ...). Unique by name, created lazily when first observed in the
// allergy corpus.
type Allergen struct {
	ID   uuid.UUID
	Name string
}

// Ingredient is a canonical culinary item identified by normalized name.
// The pipeline creates ingredients on first reference and never deletes them.
type Ingredient struct {
	ID        uuid.UUID
	Name      string
	Allergens []Allergen
}

// New creates an ingredient with a normalized name.
func New(name string) (*Ingredient, error) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return nil, ErrEmptyName
	}
	return &Ingredient{
		ID:   uuid.New(),
		Name: normalized,
	}, nil
}

// HasAllergen reports whether the allergen is already linked.
func (i *Ingredient) HasAllergen(name string) bool {
	for _, a := range i.Allergens {
		if a.Name == name {
			return true
		}
	}
	return false
}

// AttachAllergen links an allergen to the ingredient. Attachment is
// monotonic within a submission: existing links are never removed, and a
// repeated attach is a no-op. Returns true when a new link was added.
func (i *Ingredient) AttachAllergen(a Allergen) bool {
	if i.HasAllergen(a.Name) {
		return false
	}
	i.Allergens = append(i.Allergens, a)
	return true
}

// AllergenNames returns the names of all linked allergens.
func (i *Ingredient) AllergenNames() []string {
	names := make([]string, len(i.Allergens))
	for idx, a := range i.Allergens {
		names[idx] = a.Name
	}
	return names
}
