// Package objstore archives uploaded receipt images so parses can be
// audited and re-run later.
package objstore

import (
	"context"
	"errors"
	"fmt"
)

// Archive stores receipt images keyed by an opaque identifier and
// returns them on demand.
type Archive interface {
	Put(ctx context.Context, key string, mimeType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// TestArchive is a simple in-memory implementation for testing.
type TestArchive struct {
	objects map[string][]byte
	err     error
}

func NewTestArchive() *TestArchive {
	return &TestArchive{objects: map[string][]byte{}}
}

func NewTestArchiveWithError() *TestArchive {
	return &TestArchive{err: errors.New("archive unavailable")}
}

func (t *TestArchive) Put(ctx context.Context, key, mimeType string, data []byte) error {
	if t.err != nil {
		return t.err
	}
	t.objects[key] = data
	return nil
}

func (t *TestArchive) Get(ctx context.Context, key string) ([]byte, error) {
	if t.err != nil {
		return nil, t.err
	}
	data, ok := t.objects[key]
	if !ok {
		return nil, fmt.Errorf("no object with key %q", key)
	}
	return data, nil
}
