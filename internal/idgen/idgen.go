package idgen

import "github.com/google/uuid"

// NewFunc produces a new globally unique identifier. It is a variable so
// tests can substitute a deterministic sequence.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new opaque claim/message identifier.
func New() string { return NewFunc() }
