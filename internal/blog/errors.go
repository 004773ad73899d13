package blog

import "errors"

// ErrValidation matches every rejected user input. Use errors.Is with the
// specific values below to tell them apart.
var ErrValidation = errors.New("validation failed")

// ErrStorageWrite wraps failures to persist a document. The in-memory model
// is left as it was before the failed command.
var ErrStorageWrite = errors.New("storage write failed")

// ValidationError names the field that failed validation.
type ValidationError struct {
	Field string
	msg   string
}

func (e *ValidationError) Error() string { return e.msg }

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

var (
	ErrNameRequired    error = &ValidationError{Field: "name", msg: "name required"}
	ErrContentRequired error = &ValidationError{Field: "content", msg: "content required"}
	ErrTitleRequired   error = &ValidationError{Field: "title", msg: "title required"}
)
