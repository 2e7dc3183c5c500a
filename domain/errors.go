package domain

import "errors"

// Door resolution errors
var (
	ErrDoorNotFound  = errors.New("no door matched the configured name")
	ErrDoorAmbiguous = errors.New("door name matched multiple doors")
	ErrDoorMissingID = errors.New("matched door is missing a valid id")
)

// Access API errors
var (
	ErrAccessAPI = errors.New("access api request failed")
)

// Allowlist errors
var (
	ErrAllowlistUnreadable = errors.New("allowlist file is unreadable")
)
