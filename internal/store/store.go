// Package store defines the list/hash key-value capabilities the thread engine runs on.
package store

import "context"

// KV is the subset of a Redis-like store the application needs.
//
// List indices follow Redis semantics: 0 is the head (most recently pushed),
// negative indices count from the tail, and stop is inclusive.
type KV interface {
	Incr(ctx context.Context, key string) (int64, error)

	// HSet writes the given fields, leaving other fields of the hash untouched.
	HSet(ctx context.Context, key string, fields map[string]string) error
	// HGetAll returns an empty map when the key does not exist.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// LPush pushes each value to the head in turn, so the last value ends up first.
	LPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LTrim(ctx context.Context, key string, start, stop int64) error

	Del(ctx context.Context, keys ...string) error
	// RenameNX atomically moves src to dst unless dst already exists. It
	// reports whether the move happened; a missing src is not an error.
	RenameNX(ctx context.Context, src, dst string) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}
