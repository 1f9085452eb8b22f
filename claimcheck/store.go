package claimcheck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrBlobNotFound      = errors.New("claimcheck: blob not found")
	ErrReferenceMismatch = errors.New("claimcheck: stored envelope does not match reference")
)

// Store persists encoded envelopes addressed by container and location.
type Store interface {
	Put(ctx context.Context, container, location string, data []byte) error
	Get(ctx context.Context, container, location string) ([]byte, error)
	Delete(ctx context.Context, container, location string) error
}

// StoreError wraps a failed store operation
type StoreError struct {
	Op        string
	Container string
	Location  string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("claimcheck store: %s failed for %s/%s: %v", e.Op, e.Container, e.Location, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// MemoryStore is an in-process Store, useful for tests and single-process setups.
type MemoryStore struct {
	blobs map[string]map[string][]byte
	mu    sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string]map[string][]byte),
	}
}

// Put implements Store
func (s *MemoryStore) Put(ctx context.Context, container, location string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.blobs[container]
	if !ok {
		c = make(map[string][]byte)
		s.blobs[container] = c
	}
	c[location] = bytes.Clone(data)
	return nil
}

// Get implements Store
func (s *MemoryStore) Get(ctx context.Context, container, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[container][location]
	if !ok {
		return nil, &StoreError{Op: "get", Container: container, Location: location, Err: ErrBlobNotFound}
	}
	return bytes.Clone(data), nil
}

// Delete implements Store. Deleting a missing blob is not an error.
func (s *MemoryStore) Delete(ctx context.Context, container, location string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.blobs[container]; ok {
		delete(c, location)
		if len(c) == 0 {
			delete(s.blobs, container)
		}
	}
	return nil
}

// Len returns the number of stored blobs
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, c := range s.blobs {
		n += len(c)
	}
	return n
}
