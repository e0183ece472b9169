package models

import "errors"

// Sentinel errors shared by repositories, services and handlers.
var (
	ErrNotFound          = errors.New("record not found")
	ErrConflict          = errors.New("record already exists")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrMissingAssignment = errors.New("visit has clinical records but no doctor or hospital assigned")
	ErrInvalidTransition = errors.New("visit status transition not allowed")
)
