package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mirepoix/v1/internal/domain/tag"
	"github.com/mirepoix/v1/internal/ports/outbound"
	apperrors "github.com/mirepoix/v1/pkg/errors"
)

// TagRepository implements the tag registry interface using GORM
type TagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// Seed inserts the canonical tag set, leaving already-present names
// untouched. Safe to run on every startup.
func (r *TagRepository) Seed(ctx context.Context, tags []tag.Tag) error {
	for _, t := range tags {
		model := TagModel{
			ID:       t.ID,
			Name:     tag.NormalizeName(t.Name),
			Category: string(t.Category),
			Color:    t.Color,
		}
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&model).Error
		if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.NewDatabaseError("seed tags", err)
		}
	}
	return nil
}

// All returns every registry tag.
func (r *TagRepository) All(ctx context.Context) ([]tag.Tag, error) {
	var models []TagModel
	if err := r.db.WithContext(ctx).Order("name asc").Find(&models).Error; err != nil {
		return nil, apperrors.NewDatabaseError("list tags", err)
	}

	tags := make([]tag.Tag, len(models))
	for i := range models {
		tags[i] = TagFromModel(&models[i])
	}
	return tags, nil
}

// FindByNames resolves tag names against the registry. Unknown names are
// silently dropped.
func (r *TagRepository) FindByNames(ctx context.Context, names []string) ([]tag.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}

	normalized := make([]string, 0, len(names))
	for _, name := range names {
		if n := tag.NormalizeName(name); n != "" {
			normalized = append(normalized, n)
		}
	}

	var models []TagModel
	if err := r.db.WithContext(ctx).Where("name IN ?", normalized).Find(&models).Error; err != nil {
		return nil, apperrors.NewDatabaseError("find tags by name", err)
	}

	tags := make([]tag.Tag, len(models))
	for i := range models {
		tags[i] = TagFromModel(&models[i])
	}
	return tags, nil
}

// Assign attaches tags to a recipe. Assignment is idempotent per
// (recipe, tag).
func (r *TagRepository) Assign(ctx context.Context, recipeID uuid.UUID, tagIDs []uuid.UUID) error {
	for _, tagID := range tagIDs {
		link := RecipeTagModel{RecipeID: recipeID, TagID: tagID}
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&link).Error
		if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.NewDatabaseError("assign tag", err)
		}
	}
	return nil
}

// Replace atomically swaps all tag assignments for the recipe.
func (r *TagRepository) Replace(ctx context.Context, recipeID uuid.UUID, tagIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&RecipeTagModel{}).Error; err != nil {
			return apperrors.NewDatabaseError("clear tag assignments", err)
		}
		for _, tagID := range tagIDs {
			link := RecipeTagModel{RecipeID: recipeID, TagID: tagID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
				return apperrors.NewDatabaseError("assign tag", err)
			}
		}
		return nil
	})
}

// Popular returns tags ranked by assignment count.
func (r *TagRepository) Popular(ctx context.Context, limit int) ([]outbound.TagCount, error) {
	if limit <= 0 {
		limit = 10
	}

	type row struct {
		TagModel
		Assignments int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.*, count(recipe_tags.recipe_id) as assignments").
		Joins("left join recipe_tags on recipe_tags.tag_id = tags.id").
		Group("tags.id").
		Order("assignments desc, tags.name asc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("rank popular tags", err)
	}

	counts := make([]outbound.TagCount, len(rows))
	for i := range rows {
		counts[i] = outbound.TagCount{
			Tag:         TagFromModel(&rows[i].TagModel),
			Assignments: rows[i].Assignments,
		}
	}
	return counts, nil
}
