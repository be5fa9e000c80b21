// Package accountstate provides the read-time view of an account used
// throughout block validation and rollback. It is never persisted as its
// own record: every field is derived by joining the account table with the
// account's head block on demand.
package accountstate

import (
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/utils/amount"
)

// State bundles an account's AccountInfo with its head block and sideband.
// A State whose Exists() is false represents an account that has never
// been opened; every accessor on it returns the zero value.
type State struct {
	info         model.AccountInfo
	headBlock    model.Block
	headSideband model.Sideband
	exists       bool
}

// Load reads account's current state. It is a read against accounts and
// blocks only, never pending or frontiers.
func Load(dbTx model.DBReader, accounts model.AccountStore, blocks model.BlockStore, account model.Account) (State, error) {
	info, found, err := accounts.Get(dbTx, account)
	if err != nil {
		return State{}, err
	}
	if !found {
		return State{}, nil
	}
	headBlock, headSideband, _, err := blocks.Get(dbTx, info.Head)
	if err != nil {
		return State{}, err
	}
	return State{info: info, headBlock: headBlock, headSideband: headSideband, exists: true}, nil
}

// Exists reports whether the account has ever been opened.
func (s State) Exists() bool {
	return s.exists
}

// Head returns the account's current head block hash, or the zero hash if
// the account does not exist.
func (s State) Head() model.Hash {
	return s.info.Head
}

// Representative returns the account's current voting representative.
func (s State) Representative() model.Account {
	return s.info.Representative
}

// OpenBlock returns the hash of the account's first block.
func (s State) OpenBlock() model.Hash {
	return s.info.OpenBlock
}

// Epoch returns the epoch the account's head block was written at.
func (s State) Epoch() model.Epoch {
	if !s.exists {
		return model.Epoch0
	}
	return s.info.Epoch
}

// BlockCount returns the height of the account's head block, i.e. the
// number of blocks in its chain so far.
func (s State) BlockCount() model.Height {
	if !s.exists {
		return 0
	}
	return s.headSideband.Height
}

// Balance returns the account's balance as of its head block. State block
// heads carry their balance inline; legacy heads carry it in the sideband
// only, which BlockStore already surfaces uniformly.
func (s State) Balance() amount.Amount {
	if !s.exists {
		return amount.Zero
	}
	if stateBlock, ok := s.headBlock.(*model.StateBlock); ok {
		return stateBlock.Balance
	}
	return s.headSideband.Balance
}

// Info returns the underlying AccountInfo record.
func (s State) Info() model.AccountInfo {
	return s.info
}
