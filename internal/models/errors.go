package models

import "errors"

// Custom errors
var (
	ErrUnknownEnum  = errors.New("unknown enum value")
	ErrInvalidWager = errors.New("invalid wager modifiers")
)
