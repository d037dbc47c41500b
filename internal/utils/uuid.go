// Package utils holds small helpers shared by the client packages.
package utils

import "github.com/google/uuid"

// NewConnID returns a time-ordered UUIDv7 string identifying one connection.
// It falls back to a random UUID if the clock source fails.
func NewConnID() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
