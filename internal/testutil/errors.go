package testutil

import "errors"

// ErrSimulated is a sentinel error for loaders and hosts that fail on purpose.
var ErrSimulated = errors.New("simulated error for testing")
