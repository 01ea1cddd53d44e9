package store

import "fmt"

var (
	// ErrNotFound is returned when a requested record doesn't exist
	ErrNotFound = fmt.Errorf("record not found")

	// ErrClosed is returned when attempting to use a closed store
	ErrClosed = fmt.Errorf("store is closed")
)
