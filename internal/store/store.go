// Package store provides the key-value document backends the blog model
// persists into. Every backend stores opaque JSON blobs under string keys.
package store

import "context"

// Store is a key to JSON document store. Get reports found=false for a
// missing key rather than an error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

