// Package remote defines the contract the engine needs from a cross-device
// session store: a document-per-session collection under a per-identity
// namespace with batched writes, partial updates, and a live subscription
// that delivers the full collection (date ascending) on every change.
package remote

import (
	"context"

	"study-tracker/internal/models"
)

// Fields is a partial-session update; keys not present are left untouched
// on the remote document.
type Fields map[string]any

// Store is the remote collection for one identity.
type Store interface {
	// SetAll replaces the identity's whole collection in one batched write.
	SetAll(ctx context.Context, sessions []models.Session) error
	// Update merges the given fields into the document with the given id,
	// creating it if absent.
	Update(ctx context.Context, id string, fields Fields) error
	// Delete removes one document.
	Delete(ctx context.Context, id string) error
	// Clear removes the identity's whole collection in one batched delete.
	Clear(ctx context.Context) error
	// Subscribe delivers the full collection on every remote change until
	// ctx is canceled. The first delivery is the current state.
	Subscribe(ctx context.Context) (<-chan []models.Session, error)
}
