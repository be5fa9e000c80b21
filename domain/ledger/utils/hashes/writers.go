package hashes

import (
	"hash"

	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// HashWriter is used to incrementally hash data without concatenating all of
// the data into a single buffer. It exposes an io.Writer api and a Finalize
// function to get the resulting hash. The underlying hash function is
// blake2b-256, matching the digest every block variant's Hash method folds
// its fields into.
type HashWriter struct {
	hash.Hash
}

// NewHashWriter returns a new HashWriter ready to accept a block's fields in
// their canonical order.
func NewHashWriter() HashWriter {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(errors.Wrap(err, "blake2b.New256 with a nil key can never fail"))
	}
	return HashWriter{h}
}

// InfallibleWrite is just like Write but doesn't return anything.
func (h HashWriter) InfallibleWrite(p []byte) {
	// This write can never return an error; hash.Hash promises not to.
	_, err := h.Write(p)
	if err != nil {
		panic(errors.Wrap(err, "hash.Hash interface promises to not return errors"))
	}
}

// Finalize returns the resulting hash.
func (h HashWriter) Finalize() model.Hash {
	var sum model.Hash
	copy(sum[:], h.Sum(sum[:0]))
	return sum
}
