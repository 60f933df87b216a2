package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("checkout validation failed")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

// ValidationError names the form field that blocked checkout.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// EmailDispatchError means the order was built but the confirmation email was not sent.
// The cart is left as it was so the checkout can be retried.
type EmailDispatchError struct {
	OrderID string
	Err     error
}

func (e *EmailDispatchError) Error() string {
	return fmt.Sprintf("failed to send confirmation for order %s: %v", e.OrderID, e.Err)
}

func (e *EmailDispatchError) Unwrap() error {
	return e.Err
}

// Message is the text shown to the cashier.
func (e *EmailDispatchError) Message() string {
	return "Failed to send the order confirmation email. The cart was kept, please check the email settings and try again."
}
