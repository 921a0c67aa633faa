// Package id generates unique row identifiers for marketplace records.
package id

import "github.com/google/uuid"

// NewID returns a random UUID string suitable for a primary key.
func NewID() string {
	return uuid.NewString()
}
