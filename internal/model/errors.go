package model

import "errors"

var (
	// ErrConfigMissing is returned when a species or zone config is absent.
	ErrConfigMissing = errors.New("config missing")
	// ErrPoolExhausted is returned when a species reached its pool max size.
	ErrPoolExhausted = errors.New("pool exhausted")
	// ErrInvalidTarget is returned for stale or dead target references.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrInvalidTransition is returned when the state machine rejects a transition.
	ErrInvalidTransition = errors.New("invalid state transition")
)
