package recipe

import "errors"

// Domain errors for recipe operations

var (
	ErrTitleRequired      = errors.New("recipe title is required")
	ErrTitleTooLong       = errors.New("recipe title must not exceed 200 characters")
	ErrDescriptionTooLong = errors.New("recipe description must not exceed 2000 characters")
	ErrNoIngredients      = errors.New("recipe must have at least one ingredient")
	ErrNoInstructions     = errors.New("recipe must have at least one instruction")

	ErrDuplicateIngredient = errors.New("ingredient already exists in recipe")
	ErrMissingIngredientID = errors.New("ingredient line requires a resolved ingredient id")
)
