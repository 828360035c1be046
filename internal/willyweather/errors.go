package willyweather

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth covers 401 and 403 responses: the API key is invalid or has
	// no access to the requested resource.
	ErrAuth = errors.New("api key rejected")

	// ErrNotFound covers 404 responses, typically an unknown station id.
	ErrNotFound = errors.New("station not found")

	// ErrBadRequest covers 400 responses (malformed parameters).
	ErrBadRequest = errors.New("bad request")

	// ErrNoStation is returned when a coordinate search yields no station.
	ErrNoStation = errors.New("no station found for coordinates")

	// ErrCircuitOpen is returned while the circuit breaker refuses calls.
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// StatusError reports a non-2xx response outside the mapped statuses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.Code)
}
