package riot

import (
	"errors"
	"fmt"
)

// ErrEmptyAPIKey indicates that a Client was requested without an API key.
var ErrEmptyAPIKey = errors.New("riot API key must be set")

// ErrMissingTagLine indicates that a Riot ID did not carry a "#TAG" suffix.
var ErrMissingTagLine = errors.New("riot ID must be in Name#TAG form")

// ErrExhausted indicates that every retry attempt failed.
var ErrExhausted = errors.New("riot API request failed")

// StatusError is returned when the API answers with a non-success status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("riot API error %d: %s", e.StatusCode, e.Body)
}
