// Package repository holds the stores behind the API's fixture data.
//
// Stores are created by NewRepositories and handed to services explicitly;
// nothing reads them from package state.
package repository

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get for an unknown key.
var ErrNotFound = errors.New("record not found")

// Store is a keyed collection of V. List returns values in insertion order,
// Put replaces (last write wins).
type Store[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	List(ctx context.Context) ([]V, error)
	Put(ctx context.Context, key string, value V) error
}
