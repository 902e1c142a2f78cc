package storage

import "errors"

var (
	// ErrNotFound indicates that the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCircuitOpen is returned when the circuit breaker around a remote
	// store is open and rejects requests to prevent cascading failures.
	ErrCircuitOpen = errors.New("storage circuit breaker is open")
)
