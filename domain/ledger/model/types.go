package model

import (
	"encoding/hex"
	"fmt"
)

// HashSize is the length in bytes of a block hash or an account's public key.
const HashSize = 32

// SignatureSize is the length in bytes of an ed25519-style block signature.
const SignatureSize = 64

// Hash is a blake2b-256 digest. It is used both as a block hash and, since
// an account is identified by its public key, as an Account.
type Hash [HashSize]byte

// String returns the hexadecimal, lower-case encoding of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether the hash is the all-zero hash, used throughout the
// ledger to mean "no such block" (an unopened account's frontier, a block
// with no successor yet, and so on).
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Account identifies a ledger account by its ed25519 public key.
type Account = Hash

// HashFromBytes copies b into a new Hash. b must be exactly HashSize bytes.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf("invalid hash length: want %d, got %d", HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Signature is an ed25519-style detached signature over a block hash.
type Signature [SignatureSize]byte

// SignatureFromBytes copies b into a new Signature. b must be exactly
// SignatureSize bytes.
func SignatureFromBytes(b []byte) (Signature, error) {
	var s Signature
	if len(b) != SignatureSize {
		return s, fmt.Errorf("invalid signature length: want %d, got %d", SignatureSize, len(b))
	}
	copy(s[:], b)
	return s, nil
}

// Height is an account's 1-indexed position within its own chain. The
// account's open block is always at height 1.
type Height uint64

// Timestamp is a block's local application time, recorded in the sideband
// at the moment the block was processed. It has no bearing on validation:
// account chains have no global clock.
type Timestamp int64

// Epoch identifies which set of consensus and ledger rules produced a given
// block. Epochs only ever increase along an account's chain, and each
// legacy block belongs to Epoch0; only state blocks can carry a higher
// epoch, upgraded via a signed epoch link.
type Epoch uint8

// Epoch values, ordered so that comparisons (Epoch2 > Epoch1 > Epoch0) match
// upgrade direction.
const (
	EpochInvalid Epoch = iota
	EpochUnspecified
	Epoch0
	Epoch1
	Epoch2
)

// String returns a human readable label for the epoch.
func (e Epoch) String() string {
	switch e {
	case Epoch0:
		return "epoch_0"
	case Epoch1:
		return "epoch_1"
	case Epoch2:
		return "epoch_2"
	case EpochUnspecified:
		return "epoch_unspecified"
	default:
		return "epoch_invalid"
	}
}

// MaxEpoch returns the higher of the two epochs.
func MaxEpoch(a, b Epoch) Epoch {
	if a > b {
		return a
	}
	return b
}

