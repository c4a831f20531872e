package utils

import "github.com/google/uuid"

// NewID returns a server-assigned unique row identifier.
func NewID() string {
	return uuid.NewString()
}
