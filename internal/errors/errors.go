package errors

import "errors"

// Domain error kinds surfaced by the service layer. Handlers translate
// them to HTTP statuses via Map; services never return raw store errors.
var (
	// ErrDuplicateLike is returned when the ordered (liker, likee) pair
	// already has a like row.
	ErrDuplicateLike = errors.New("already liked")

	// ErrQuotaExceeded is returned when a liker has reached the daily
	// like limit. Retryable once enough time passes.
	ErrQuotaExceeded = errors.New("daily like limit reached")

	// ErrNotFound is returned for unknown client ids.
	ErrNotFound = errors.New("not found")

	// ErrGeocodeUnresolved is returned when a place name has no
	// coordinates according to the geocoder.
	ErrGeocodeUnresolved = errors.New("coordinates not found for place")

	// ErrInvalidLocation is returned when a location filter carries
	// neither a place name nor a coordinate pair.
	ErrInvalidLocation = errors.New("location filter needs a place or coordinates")

	// ErrPersistence wraps store round-trip failures.
	ErrPersistence = errors.New("persistence failure")

	// ErrEmailTaken is returned on registration with an email that is
	// already in use by an active client.
	ErrEmailTaken = errors.New("email is not available")

	// ErrInvalidCredentials is returned on login with an unknown email
	// or a wrong password. Deliberately indistinct between the two.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Is re-exports errors.Is so callers don't need two errors imports.
func Is(err, target error) bool { return errors.Is(err, target) }
