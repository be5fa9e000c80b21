package database

import (
	"bytes"

	"github.com/pkg/errors"
)

// separator delimits bucket path segments inside a physical key.
var separator = []byte("/")

// ErrNotFound denotes that the requested item was not found in the database.
var ErrNotFound = errors.New("key not found")

// IsNotFoundError checks whether an error is an ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Bucket is a helper type meant to combine buckets, sub-buckets, and keys
// into a single full key-value database key.
type Bucket struct {
	path [][]byte
}

// MakeBucket creates a new Bucket using the given path of buckets.
func MakeBucket(path ...[]byte) *Bucket {
	return &Bucket{path: path}
}

// Bucket returns the sub-bucket of the current bucket defined by bucketBytes.
func (b *Bucket) Bucket(bucketBytes []byte) *Bucket {
	newPath := make([][]byte, len(b.path)+1)
	copy(newPath, b.path)
	newPath[len(b.path)] = bucketBytes
	return MakeBucket(newPath...)
}

// Key returns the key inside of the current bucket.
func (b *Bucket) Key(suffix []byte) *Key {
	return &Key{bucket: b, suffix: suffix}
}

// Path returns the full path of the current bucket, always terminated by
// the bucket separator so that it is a valid prefix for a leveldb range
// scan over everything the bucket (and its sub-buckets) contains.
func (b *Bucket) Path() []byte {
	bucketPath := bytes.Join(b.path, separator)

	pathWithSeparator := make([]byte, len(bucketPath)+len(separator))
	copy(pathWithSeparator, bucketPath)
	copy(pathWithSeparator[len(bucketPath):], separator)

	return pathWithSeparator
}

// Key is a physical database key: a bucket path plus a suffix unique within
// that bucket.
type Key struct {
	bucket *Bucket
	suffix []byte
}

// Bytes returns the full, flattened key as stored in the underlying engine.
func (k *Key) Bytes() []byte {
	bucketPath := k.bucket.Path()
	full := make([]byte, len(bucketPath)+len(k.suffix))
	copy(full, bucketPath)
	copy(full[len(bucketPath):], k.suffix)
	return full
}

// Suffix returns the part of the key that lives inside its bucket.
func (k *Key) Suffix() []byte {
	return k.suffix
}

// Bucket returns the bucket that owns this key.
func (k *Key) Bucket() *Bucket {
	return k.bucket
}

// String implements fmt.Stringer for debugging and log output.
func (k *Key) String() string {
	return string(k.Bytes())
}
