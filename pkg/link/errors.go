package link

import (
	"errors"
	"fmt"

	"tableflip.dev/dynlink/pkg/field"
)

var (
	// ErrMissingRequiredField means the link or domain was not provided.
	ErrMissingRequiredField = errors.New("link: missing required field")
	// ErrInvalidURL means the link is not an absolute URL or the domain is
	// not a valid host name.
	ErrInvalidURL = errors.New("link: invalid url")
	// ErrNoLinker means the builder was not given an external service.
	ErrNoLinker = errors.New("link: no linker configured")
	// ErrEmptyShortLink means the service reported success without a link.
	ErrEmptyShortLink = errors.New("link: service returned no short link")
)

// FieldError attaches the offending parameter to a validation failure.
type FieldError struct {
	Field field.ID
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field.Label(), e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field.Label(), e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a user-input problem that should be
// shown inline rather than treated as a failure of the service.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingRequiredField) || errors.Is(err, ErrInvalidURL)
}
