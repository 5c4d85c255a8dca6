// Package gorm provides GORM model definitions and repository
// implementations for the ingestion schema.
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IngredientModel represents the GORM model for canonical ingredients
type IngredientModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Allergens []AllergenModel `gorm:"many2many:ingredient_allergens;joinForeignKey:IngredientID;joinReferences:AllergenID"`
}

// TableName returns the table name for IngredientModel
func (IngredientModel) TableName() string { return "ingredients" }

// BeforeCreate assigns an id when none is set
func (m *IngredientModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// AllergenModel represents the GORM model for allergen tags
type AllergenModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	CreatedAt time.Time
}

// TableName returns the table name for AllergenModel
func (AllergenModel) TableName() string { return "allergens" }

// BeforeCreate assigns an id when none is set
func (m *AllergenModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// RecipeModel represents the GORM model for ingested recipes
type RecipeModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	Title       string    `gorm:"type:varchar(255);not null;index"`
	Description string    `gorm:"type:text"`
	AuthorID    uuid.UUID `gorm:"type:char(36);not null;index"`

	Instructions StringSlice `gorm:"type:json"`
	Nutrition    JSONField   `gorm:"type:json"`

	PrepTimeMinutes int `gorm:"column:prep_time_minutes;default:0"`
	CookTimeMinutes int `gorm:"column:cook_time_minutes;default:0"`
	Servings        int `gorm:"default:1"`

	IsPublic bool   `gorm:"default:false;index"`
	ImageURL string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	// Relationships
	Ingredients []RecipeIngredientModel `gorm:"foreignKey:RecipeID"`
	Tags        []TagModel              `gorm:"many2many:recipe_tags;joinForeignKey:RecipeID;joinReferences:TagID"`
}

// TableName returns the table name for RecipeModel
func (RecipeModel) TableName() string { return "recipes" }

// BeforeCreate assigns an id when none is set
func (m *RecipeModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// RecipeIngredientModel represents one ingredient row of a recipe. The
// unique index enforces the no-duplicate-ingredient invariant at the
// schema level.
type RecipeIngredientModel struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	RecipeID     uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_recipe_ingredient"`
	Quantity     string    `gorm:"type:varchar(50);not null"`
	Unit         string    `gorm:"type:varchar(50);not null"`
	Position     int       `gorm:"default:0"`

	// Relationships
	Ingredient IngredientModel `gorm:"foreignKey:IngredientID"`
}

// TableName returns the table name for RecipeIngredientModel
func (RecipeIngredientModel) TableName() string { return "recipe_ingredients" }

// BeforeCreate assigns an id when none is set
func (m *RecipeIngredientModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TagModel represents the GORM model for registry tags
type TagModel struct {
	ID       uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name     string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Category string    `gorm:"type:varchar(50);not null;index"`
	Color    string    `gorm:"type:varchar(20)"`

	CreatedAt time.Time
}

// TableName returns the table name for TagModel
func (TagModel) TableName() string { return "tags" }

// BeforeCreate assigns an id when none is set
func (m *TagModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// RecipeTagModel is the recipe/tag join table; the composite primary key
// makes assignment idempotent per (recipe, tag).
type RecipeTagModel struct {
	RecipeID  uuid.UUID `gorm:"type:char(36);primaryKey"`
	TagID     uuid.UUID `gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time
}

// TableName returns the table name for RecipeTagModel
func (RecipeTagModel) TableName() string { return "recipe_tags" }

// IngredientAllergenModel is the ingredient/allergen join table.
type IngredientAllergenModel struct {
	IngredientID uuid.UUID `gorm:"type:char(36);primaryKey"`
	AllergenID   uuid.UUID `gorm:"type:char(36);primaryKey"`
	CreatedAt    time.Time
}

// TableName returns the table name for IngredientAllergenModel
func (IngredientAllergenModel) TableName() string { return "ingredient_allergens" }

// AllModels lists every model for automigration, parents before children.
func AllModels() []interface{} {
	return []interface{}{
		&IngredientModel{},
		&AllergenModel{},
		&IngredientAllergenModel{},
		&RecipeModel{},
		&RecipeIngredientModel{},
		&TagModel{},
		&RecipeTagModel{},
	}
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// JSONField custom type for handling arbitrary JSON documents
type JSONField []byte

// Scan implements the sql.Scanner interface
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = append((*j)[:0], v...)
		return nil
	case string:
		*j = JSONField(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into JSONField", value)
	}
}

// Value implements the driver.Valuer interface
func (j JSONField) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}
