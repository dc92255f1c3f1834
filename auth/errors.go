package auth

import (
	"errors"
	"net/http"
)

// Kind classifies account errors for the request boundary.
type Kind uint8

const (
	KindInternal Kind = iota
	KindInvalid
	KindConflict
	KindNotFound
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

var (
	ErrMissingFields      = errors.New("username, email and password are required")
	ErrMissingProfile     = errors.New("username and email are required")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

var publicMessages = map[error]string{
	ErrMissingFields:      "Username, email and password are required",
	ErrMissingProfile:     "Username and email are required",
	ErrPasswordTooLong:    "Password is too long",
	ErrDuplicateEmail:     "Email already exists",
	ErrDuplicateUsername:  "Username already exists",
	ErrUserNotFound:       "User not found",
	ErrInvalidCredentials: "Invalid credentials",
	ErrInvalidToken:       "Invalid token",
}

// Error carries the failing operation and its Kind around an underlying error.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return &Error{Op: op, Kind: ae.Kind, Err: err}
	}
	return &Error{Op: op, Kind: kindFor(err), Err: err}
}

func kindFor(err error) Kind {
	switch {
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrMissingProfile),
		errors.Is(err, ErrPasswordTooLong):
		return KindInvalid
	case errors.Is(err, ErrDuplicateEmail), errors.Is(err, ErrDuplicateUsername):
		return KindConflict
	case errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidToken):
		return KindUnauthorized
	default:
		return KindInternal
	}
}

// KindOf reports the Kind of err, KindInternal for anything unclassified.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return kindFor(err)
}

// PublicMessage returns the client-facing text for a known sentinel, or fallback.
func PublicMessage(err error, fallback string) string {
	for sentinel, msg := range publicMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return fallback
}

// StatusOf maps a Kind to an HTTP status.
func StatusOf(k Kind) int {
	switch k {
	case KindInvalid, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// SentinelFor maps a public message back to its sentinel, so remote callers can use
// errors.Is on responses. Unknown messages return nil.
func SentinelFor(message string) error {
	for sentinel, msg := range publicMessages {
		if msg == message {
			return sentinel
		}
	}
	return nil
}
