package server

import (
	"context"
	"errors"
	"sync/atomic"

	"credocarbon/storage"
)

// ReadyState tracks initialization state for health checks
type ReadyState struct {
	store        storage.Store
	registryFile string

	storageReady atomic.Bool
	adminReady   atomic.Bool
}

// NewReadyState creates a new ReadyState instance
func NewReadyState(store storage.Store, registryFile string) *ReadyState {
	return &ReadyState{store: store, registryFile: registryFile}
}

// MarkStorageReady marks the document store initialization as complete
func (r *ReadyState) MarkStorageReady() {
	r.storageReady.Store(true)
}

// MarkAdminReady marks the admin credential setup as complete
func (r *ReadyState) MarkAdminReady() {
	r.adminReady.Store(true)
}

// IsStorageReady returns true if the document store is initialized
func (r *ReadyState) IsStorageReady() bool {
	return r.storageReady.Load()
}

// IsAdminReady returns true if the admin credential setup is complete
func (r *ReadyState) IsAdminReady() bool {
	return r.adminReady.Load()
}

// IsFullyReady returns true if all initialization steps are complete
func (r *ReadyState) IsFullyReady() bool {
	return r.storageReady.Load() && r.adminReady.Load()
}

// ProbeStorage checks the document store can be reached. A missing registry
// document is healthy; the dataset may simply not have been uploaded yet.
func (r *ReadyState) ProbeStorage(ctx context.Context) error {
	_, err := r.store.ReadDocument(ctx, r.registryFile)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}
