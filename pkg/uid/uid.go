package uid

import "github.com/google/uuid"

// New returns a random record id.
func New() string {
	return uuid.NewString()
}

// Valid reports whether id has the shape produced by New.
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
