// Package store provides the durable key/value metadata store.
//
// The store maps string keys to JSON documents. It guarantees
// read-your-writes within a single process and last-write-wins per key,
// but no atomicity across writes: callers that read-modify-write a
// document can lose concurrent updates.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no document exists under a key.
var ErrNotFound = errors.New("document not found")

// Store is the key→document contract shared by all backends.
type Store interface {
	// Get returns the document stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores the document under key, overwriting in full.
	Put(ctx context.Context, key string, doc []byte) error

	// Delete removes the document under key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key string) error

	// List returns all keys with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Key scheme. One flat namespace, segmented by prefix.
const (
	codeKeyPrefix      = "code:"
	payloadKeyPrefix   = "payload:"
	analyticsKeyPrefix = "analytics:"
)

// CodeKey returns the store key for a code definition.
func CodeKey(id string) string { return codeKeyPrefix + id }

// PayloadKey returns the store key for a payload descriptor.
func PayloadKey(ref string) string { return payloadKeyPrefix + ref }

// AnalyticsKey returns the store key for an analytics summary.
func AnalyticsKey(id string) string { return analyticsKeyPrefix + id }
