package bus

import (
	"errors"
	"fmt"
)

const (
	ErrorConfiguration  = "configuration"
	ErrorMissingBody    = "missing_body"
	ErrorMalformedInput = "malformed_input"
	ErrorDispatch       = "dispatch"
)

// Error represents a stable, categorized delivery failure.
type Error struct {
	Category string
	Detail   string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Detail, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Category, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Category, e.Err)
	default:
		return e.Category
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError creates a categorized error.
func NewError(category string, detail string) error {
	return &Error{Category: category, Detail: detail}
}

// WrapError categorizes err. A nil err yields nil.
func WrapError(category string, detail string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Category: category, Detail: detail, Err: err}
}

// CategoryFromError returns the stable category for an error.
//
// Uncategorized errors are treated as dispatch faults.
func CategoryFromError(err error) string {
	if err == nil {
		return ""
	}

	var categorized *Error
	if errors.As(err, &categorized) {
		return categorized.Category
	}

	return ErrorDispatch
}
