// Package localstore is the durable queue of cases that have not reached the remote store yet.
package localstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

// ErrNotFound is returned when no pending case has the requested id
var ErrNotFound = errors.New("pending case not found")

// Repository is the local pending case store
type Repository interface {
	Get(ctx context.Context, id string) (models.Case, error)
	Put(ctx context.Context, c models.Case) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Case, error)
}

// PersistenceError wraps a failed read or write of the local store
type PersistenceError struct {
	Op  string
	ID  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("local store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("local store %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
