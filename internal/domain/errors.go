package domain

import (
	"errors"
	"strings"
)

// FieldError describes a single violated field rule
type FieldError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// ValidationError is returned when a product fails field validation
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Detail joins the field descriptions into a single line
func (e *ValidationError) Detail() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Description
	}
	return strings.Join(parts, "; ")
}

// Is lets errors.Is match any ValidationError against ErrInvalidProduct
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Message == e.Message
}

// ArgumentError is returned when a required argument is blank
type ArgumentError struct {
	Argument string
	Message  string
}

func (e *ArgumentError) Error() string {
	return e.Message
}

// NotFoundError is returned when a lookup yields no products
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// ConflictError is returned when a write would break product code uniqueness
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

var (
	ErrInvalidProduct    = &ValidationError{Message: "Invalid product!"}
	ErrEmptyProductCode  = &ArgumentError{Argument: "code", Message: "Product code cannot be empty."}
	ErrEmptyCountry      = &ArgumentError{Argument: "country", Message: "Country name cannot be empty."}
	ErrProductNotFound   = &NotFoundError{Message: "No product found."}
	ErrProductCodeExists = &ConflictError{Message: "Product code already exists."}
)

// IsValidation reports whether err is a product validation failure
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsArgument reports whether err is a blank-argument failure
func IsArgument(err error) bool {
	var target *ArgumentError
	return errors.As(err, &target)
}

// IsNotFound reports whether err means no product matched
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflict reports whether err is a product code collision
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}
