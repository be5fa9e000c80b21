package hashes

import (
	"encoding/hex"

	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/pkg/errors"
)

// FromString creates a model.Hash from a hexadecimal hash string. The string
// must be exactly model.HashSize*2 characters long.
func FromString(s string) (model.Hash, error) {
	var h model.Hash
	expectedLen := model.HashSize * 2
	if len(s) != expectedLen {
		return h, errors.Errorf("hash string length is %d, while it should be %d",
			len(s), expectedLen)
	}
	_, err := hex.Decode(h[:], []byte(s))
	if err != nil {
		return h, errors.Wrap(err, "couldn't decode hash hex")
	}
	return h, nil
}

// ToStrings converts a slice of hashes into a slice of the corresponding
// hexadecimal strings.
func ToStrings(hashList []model.Hash) []string {
	out := make([]string, len(hashList))
	for i, h := range hashList {
		out[i] = h.String()
	}
	return out
}
