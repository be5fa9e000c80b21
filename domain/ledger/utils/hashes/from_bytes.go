package hashes

import (
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/pkg/errors"
)

// FromBytes creates a model.Hash from the given byte slice.
func FromBytes(hashBytes []byte) (model.Hash, error) {
	if len(hashBytes) != model.HashSize {
		return model.Hash{}, errors.Errorf("invalid hash size. Want: %d, got: %d",
			model.HashSize, len(hashBytes))
	}
	var h model.Hash
	copy(h[:], hashBytes)
	return h, nil
}
