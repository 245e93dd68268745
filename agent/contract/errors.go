package contract

import "errors"

var (
	// ErrNotFound is a clean directory miss: the phone number is not
	// registered. Distinct from ErrLookup so callers can tell "new
	// customer" from "directory unreachable".
	ErrNotFound = errors.New("phone number not found in directory")

	// ErrLookup covers transport, decode, and retry-exhaustion
	// failures while querying the directory.
	ErrLookup = errors.New("directory lookup failed")

	// ErrCompletion covers any model failure: transport, empty
	// response, or provider rejection.
	ErrCompletion = errors.New("completion failed")

	// ErrInvalidInput rejects caller input the pipeline cannot work
	// with, such as an empty message.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState rejects operations against a call in the wrong
	// phase, such as processing a message after close.
	ErrInvalidState = errors.New("invalid call state")

	// ErrValidation marks a pipeline-internal consistency failure.
	ErrValidation = errors.New("validation failed")
)
