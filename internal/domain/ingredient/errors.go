package ingredient

import "errors"

var (
	ErrEmptyName = errors.New("ingredient name cannot be empty")
)
