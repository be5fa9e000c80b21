package model

import "github.com/blocklattice/ledgerd/domain/ledger/utils/amount"

// Sideband is store-side metadata about a block, recorded when the block is
// applied. None of it is covered by the block's own hash: it describes the
// block's place in the ledger rather than its content.
type Sideband struct {
	Type      BlockType
	Account   Account
	Successor Hash
	Balance   amount.Amount
	Height    Height
	Timestamp Timestamp
}

// HasSuccessor reports whether a child block has already been chained onto
// this one.
func (s Sideband) HasSuccessor() bool {
	return !s.Successor.IsZero()
}
