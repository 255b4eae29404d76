package services

import (
	"errors"
	"fmt"
	"strings"

	"property-market/internal/models"
)

var (
	ErrListingNotFound    = errors.New("listing not found")
	ErrMediaNotFound      = errors.New("media not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrInspectionNotFound = errors.New("inspection not found")
	ErrForbidden          = errors.New("user not authorized to perform this action")

	// ErrInvalidState is returned when an operation is not permitted given the
	// listing's current status (editing a verified listing, deleting a
	// non-draft, booking an inspection on an unverified listing).
	ErrInvalidState = errors.New("operation not permitted in current listing status")

	// ErrInvalidTransition is returned when a lifecycle action is invoked from
	// a status that does not permit it.
	ErrInvalidTransition = errors.New("lifecycle action not permitted from current status")
)

// ValidationError signals malformed input. It never accompanies a state
// change.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// PolicyViolationError is returned when a submission does not satisfy the
// document/media policy. It names every unmet requirement, not just the
// first.
type PolicyViolationError struct {
	ImagesRequired   int
	ImagesAttached   int
	MissingDocuments []models.DocType
}

func (e *PolicyViolationError) Error() string {
	var parts []string
	if e.ImagesAttached < e.ImagesRequired {
		parts = append(parts, fmt.Sprintf("at least %d image(s) required, %d attached", e.ImagesRequired, e.ImagesAttached))
	}
	for _, doc := range e.MissingDocuments {
		parts = append(parts, fmt.Sprintf("missing required document: %s", doc))
	}
	return "submission requirements not met: " + strings.Join(parts, "; ")
}
