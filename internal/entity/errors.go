package entity

import "errors"

// Domain errors
var (
	// Wizard session errors
	ErrSessionNotFound      = errors.New("wizard session not found")
	ErrWrongStep            = errors.New("operation not allowed on current step")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrNoResult             = errors.New("no generated result available")

	// Selection / validation errors
	ErrMissingSelection = errors.New("required selection is missing")
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")

	// Content errors
	ErrUnknownKind    = errors.New("unknown content kind")
	ErrInvalidContent = errors.New("invalid content shape")
	ErrItemNotFound   = errors.New("content item not found")
	ErrInvalidPath    = errors.New("invalid item path")

	// Edit errors
	ErrEditInProgress = errors.New("another item is already being edited")
	ErrNoEditOpen     = errors.New("no edit in progress")
	ErrLastItem       = errors.New("cannot delete the last item")

	// Library errors
	ErrContentNotFound = errors.New("saved content not found")
)
