package domain

import "errors"

var (
	ErrSerializationFailure = errors.New("serialization failure")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrValidation           = errors.New("invalid input")
	ErrNoCapacity           = errors.New("no available table fits party size at requested time")
	ErrOutsideServiceWindow = errors.New("requested time is outside service window")
)
