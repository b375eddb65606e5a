package services

import "fmt"

// ErrorKind classifies failures surfaced by the checkout core.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindInvalidCode        ErrorKind = "invalid_code"
	KindMinimumNotMet      ErrorKind = "minimum_not_met"
	KindServiceError       ErrorKind = "service_error"
	KindMissingRedirectURL ErrorKind = "missing_redirect_url"
	KindPersistenceWarning ErrorKind = "persistence_warning"
	KindCheckoutInProgress ErrorKind = "checkout_in_progress"
)

// CheckoutError carries a caller-visible message and the underlying cause.
type CheckoutError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *CheckoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

func newCheckoutError(kind ErrorKind, message string, err error) *CheckoutError {
	return &CheckoutError{Kind: kind, Message: message, Err: err}
}

// ErrCheckoutInProgress is returned when Submit is called while an attempt
// is already running.
var ErrCheckoutInProgress = newCheckoutError(KindCheckoutInProgress, "A checkout is already in progress", nil)
