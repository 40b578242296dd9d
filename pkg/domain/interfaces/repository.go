package interfaces

import (
	"context"
	"errors"
)

// ErrNotFound is returned (wrapped) by repositories when a record does not exist
var ErrNotFound = errors.New("not found")

// Repository defines the interface for data persistence
type Repository interface {
	Patient() PatientRepository
	Turn() TurnRepository
	Request() RequestRepository

	// Close releases the underlying client or connection pool
	Close() error
}

// Pinger is implemented by repositories that can check their backend connection
type Pinger interface {
	Ping(ctx context.Context) error
}
