package id

import "github.com/google/uuid"

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// UUID produces random v4 identifiers, used to correlate API calls in logs.
type UUID struct{}

func (UUID) New() string {
	return uuid.NewString()
}

// Static returns the same value every time.
type Static string

func (s Static) New() string {
	return string(s)
}
