package model

import "github.com/blocklattice/ledgerd/domain/ledger/utils/amount"

// BlockStore is the block table: hash -> serialized block + sideband +
// epoch tag. It also derives the handful of per-block facts the validator
// and facade need without decoding the whole record every time.
type BlockStore interface {
	Put(dbTx DBTransaction, block Block, sideband Sideband, epoch Epoch) error
	Get(dbTx DBReader, hash Hash) (Block, Sideband, Epoch, error)
	Exists(dbTx DBReader, hash Hash) (bool, error)
	Delete(dbTx DBTransaction, hash Hash) error

	// Account returns the account that authored hash, per its sideband.
	Account(dbTx DBReader, hash Hash) (Account, error)
	// Height returns the height of hash within its account's chain.
	Height(dbTx DBReader, hash Hash) (Height, error)
	// Balance returns the account balance immediately after hash was applied.
	Balance(dbTx DBReader, hash Hash) (amount.Amount, error)
	// Epoch returns the epoch tag recorded alongside hash.
	Epoch(dbTx DBReader, hash Hash) (Epoch, error)
	// Count returns the total number of blocks in the store.
	Count(dbTx DBReader) (uint64, error)

	// SetSuccessor updates the sideband of hash to point at successor. Used
	// when a child block is applied on top of hash, and cleared again on
	// rollback.
	SetSuccessor(dbTx DBTransaction, hash Hash, successor Hash) error
}

// AccountStore is accounts_v0/accounts_v1: account -> AccountInfo, split by
// epoch. Implementations must delete the row from one epoch's table before
// inserting into the other's on an epoch transition; see Move.
type AccountStore interface {
	Get(dbTx DBReader, account Account) (AccountInfo, bool, error)
	Put(dbTx DBTransaction, account Account, info AccountInfo) error
	Delete(dbTx DBTransaction, account Account, epoch Epoch) error
	Exists(dbTx DBReader, account Account) (bool, error)

	// Move deletes account's row from fromEpoch's table (if present) and
	// writes info into toEpoch's table, so an epoch transition never
	// leaves a ghost row behind in the old table.
	Move(dbTx DBTransaction, account Account, fromEpoch, toEpoch Epoch, info AccountInfo) error

	// ForEach invokes fn once per stored account, across both epoch tables,
	// stopping at the first error either fn or the scan itself returns. Used
	// to warm RepWeights from a cold start.
	ForEach(dbTx DBReader, fn func(account Account, info AccountInfo) error) error
}

// PendingStore is pending_v0/pending_v1: (destination, send_hash) ->
// (source, amount, epoch), split by epoch of the pending entry's Epoch
// field (the epoch the sender was at when it sent).
type PendingStore interface {
	Get(dbTx DBReader, key PendingKey) (PendingEntry, bool, error)
	Put(dbTx DBTransaction, key PendingKey, entry PendingEntry) error
	Delete(dbTx DBTransaction, key PendingKey, epoch Epoch) error
	Exists(dbTx DBReader, key PendingKey) (bool, error)

	// SumForAccount sums the Amount of every pending entry, across both
	// epoch tables, addressed to account.
	SumForAccount(dbTx DBReader, account Account) (amount.Amount, error)
}

// FrontierStore is the frontiers table: legacy head block hash -> owning
// account. State-block heads are never present here.
type FrontierStore interface {
	Get(dbTx DBReader, hash Hash) (Account, bool, error)
	Put(dbTx DBTransaction, hash Hash, account Account) error
	Delete(dbTx DBTransaction, hash Hash) error
}

// ConfirmationHeightStore is the confirmation_height table: account ->
// height. It is the hard floor rollback may never cross.
type ConfirmationHeightStore interface {
	Get(dbTx DBReader, account Account) (Height, bool, error)
	Put(dbTx DBTransaction, account Account, height Height) error
	Delete(dbTx DBTransaction, account Account) error
	Exists(dbTx DBReader, account Account) (bool, error)

	// ForEach invokes fn once per account with a recorded confirmation
	// height, stopping at the first error either fn or the scan itself
	// returns. Used to sum the cemented block count from a cold start.
	ForEach(dbTx DBReader, fn func(account Account, height Height) error) error
}

// RepWeights is the in-memory, process-wide cache of representative voting
// weight. The only mutator is Add: callers never set an absolute weight,
// only apply a signed delta, so the sum of all weights can only change by
// a balance actually moving.
type RepWeights interface {
	// Add applies delta (which may be negative) to representative's tracked
	// weight.
	Add(representative Account, delta amount.Amount, negative bool)
	// Get returns representative's currently tracked weight, or zero if
	// untracked.
	Get(representative Account) amount.Amount
	// Total returns the sum of every tracked representative's weight.
	Total() amount.Amount
}
