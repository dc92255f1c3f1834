package session

import (
	"errors"
	"fmt"

	"storefront/auth"
	"storefront/cart"
)

var (
	// ErrEmptyCart is returned by Checkout before any request is made.
	ErrEmptyCart = cart.ErrEmptyCart
	// ErrNotAuthenticated is returned by operations that need a logged-in session.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// APIError is a non-2xx response from the account server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Unwrap exposes the account sentinel matching the message, if any.
func (e *APIError) Unwrap() error {
	return auth.SentinelFor(e.Message)
}

// Notice renders err as the text shown to the shopper.
func Notice(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyCart):
		return "Your cart is empty. Add items to proceed to checkout."
	case errors.Is(err, ErrNotAuthenticated):
		return "Please log in to continue."
	case errors.Is(err, auth.ErrDuplicateEmail), errors.Is(err, auth.ErrDuplicateUsername):
		return "Registration failed: " + auth.PublicMessage(err, "") + "."
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidCredentials):
		return "Login failed. Please check your credentials and try again."
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return "Something went wrong. Please try again."
	}
}
