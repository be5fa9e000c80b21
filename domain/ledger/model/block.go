package model

// BlockType tags which of the five block variants a stored block is. It is
// persisted both as the leading byte of a block's stored encoding and in
// the sideband alongside the block.
type BlockType uint8

// Block variants, in the order they are introduced historically: legacy
// send/receive/open/change, then the unified state block.
const (
	BlockTypeInvalid BlockType = iota
	BlockTypeSend
	BlockTypeReceive
	BlockTypeOpen
	BlockTypeChange
	BlockTypeState
)

func (t BlockType) String() string {
	switch t {
	case BlockTypeSend:
		return "send"
	case BlockTypeReceive:
		return "receive"
	case BlockTypeOpen:
		return "open"
	case BlockTypeChange:
		return "change"
	case BlockTypeState:
		return "state"
	default:
		return "invalid"
	}
}

// IsLegacy reports whether the block variant predates the unified state
// block. Only legacy head blocks are tracked in the frontier table.
func (t BlockType) IsLegacy() bool {
	switch t {
	case BlockTypeSend, BlockTypeReceive, BlockTypeOpen, BlockTypeChange:
		return true
	default:
		return false
	}
}

// Block is implemented by every block variant. The validator and rollbacker
// dispatch with a type switch on the concrete variant to reach
// variant-specific fields.
type Block interface {
	// Type returns which of the five variants this block is.
	Type() BlockType

	// Hash returns the block's content hash. Two Go values representing the
	// same on-chain block always hash identically; the sideband is not
	// covered by this hash.
	Hash() Hash

	// BlockSignature returns the detached signature over Hash().
	BlockSignature() Signature
}

