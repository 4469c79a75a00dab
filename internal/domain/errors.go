package domain

import "errors"

var (
	// ErrFileNotFound is returned when an accident file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("missing required column")

	// ErrMalformedRow is returned when a required field cannot be parsed.
	ErrMalformedRow = errors.New("malformed row")

	// ErrInvalidYear is returned for a year that could not be parsed.
	ErrInvalidYear = errors.New("invalid year")

	// ErrNoData is returned when none of the requested years could be loaded.
	ErrNoData = errors.New("no data for any requested year")

	// ErrInvalidState is returned when a state number does not occur in a year's data.
	ErrInvalidState = errors.New("invalid STATE number")
)
