package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrMissingRequired = goerr.New("required field is missing")
	ErrInvalidValue    = goerr.New("invalid field value")
)

// Context keys for error values
const (
	FieldKey = "field"
	ValueKey = "value"
)
