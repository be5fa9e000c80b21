package model

import "github.com/blocklattice/ledgerd/domain/ledger/utils/amount"

// AccountInfo is the per-account record kept in accounts_v0/accounts_v1.
// Which table it lives in determines its Epoch; the row itself does not
// carry the epoch as a field, but callers reading it back attach the
// table's epoch, so in-memory copies always carry it explicitly here for
// convenience.
type AccountInfo struct {
	Head           Hash
	Representative Account
	OpenBlock      Hash
	Epoch          Epoch
}

// IsOpen reports whether the account has ever received an Open or state
// block, i.e. whether it has any chain at all.
func (a AccountInfo) IsOpen() bool {
	return !a.Head.IsZero()
}

// PendingKey identifies a pending entry: the destination account that may
// claim it, and the hash of the send block that created it.
type PendingKey struct {
	Destination Account
	SendHash    Hash
}

// PendingEntry is the value side of a pending row: who sent it, how much,
// and at what epoch the sending account was when it sent it.
type PendingEntry struct {
	Source Account
	Amount amount.Amount
	Epoch  Epoch
}
