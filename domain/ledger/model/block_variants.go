package model

import "github.com/blocklattice/ledgerd/domain/ledger/utils/amount"

// SendBlock moves value out of the signer's chain into a pending entry for
// Destination, to be claimed by a later Receive or Open. Balance is the
// account's remaining balance after the send, not the transferred amount;
// the transferred amount is derived by the validator as prev - Balance.
type SendBlock struct {
	Previous    Hash
	Destination Account
	Balance     amount.Amount
	Signature_  Signature

	hash Hash
}

func (b *SendBlock) Type() BlockType           { return BlockTypeSend }
func (b *SendBlock) Hash() Hash                { return b.hash }
func (b *SendBlock) BlockSignature() Signature { return b.Signature_ }
func (b *SendBlock) SetHash(h Hash)            { b.hash = h }

// ReceiveBlock claims a pending entry created by Source, a send block on
// another account's chain.
type ReceiveBlock struct {
	Previous   Hash
	Source     Hash
	Signature_ Signature

	hash Hash
}

func (b *ReceiveBlock) Type() BlockType           { return BlockTypeReceive }
func (b *ReceiveBlock) Hash() Hash                { return b.hash }
func (b *ReceiveBlock) BlockSignature() Signature { return b.Signature_ }
func (b *ReceiveBlock) SetHash(h Hash)            { b.hash = h }

// OpenBlock is the first block of an account's chain, claiming a pending
// entry and simultaneously appointing a representative.
type OpenBlock struct {
	AccountField   Account
	Source         Hash
	Representative Account
	Signature_     Signature

	hash Hash
}

func (b *OpenBlock) Type() BlockType           { return BlockTypeOpen }
func (b *OpenBlock) Hash() Hash                { return b.hash }
func (b *OpenBlock) BlockSignature() Signature { return b.Signature_ }
func (b *OpenBlock) SetHash(h Hash)            { b.hash = h }

// ChangeBlock changes the account's representative without moving value.
type ChangeBlock struct {
	Previous       Hash
	Representative Account
	Signature_     Signature

	hash Hash
}

func (b *ChangeBlock) Type() BlockType           { return BlockTypeChange }
func (b *ChangeBlock) Hash() Hash                { return b.hash }
func (b *ChangeBlock) BlockSignature() Signature { return b.Signature_ }
func (b *ChangeBlock) SetHash(h Hash)            { b.hash = h }

// StateBlock subsumes send, receive, change, open, and epoch-upgrade in a
// single self-describing variant: the account's full new state is carried
// in every block, and the validator infers which "kind" of transition
// occurred by comparing Balance against the previous head's balance and
// inspecting Link.
type StateBlock struct {
	AccountField   Account
	Previous       Hash
	Representative Account
	Balance        amount.Amount
	Link           Hash
	Signature_     Signature

	hash Hash
}

func (b *StateBlock) Type() BlockType           { return BlockTypeState }
func (b *StateBlock) Hash() Hash                { return b.hash }
func (b *StateBlock) BlockSignature() Signature { return b.Signature_ }
func (b *StateBlock) SetHash(h Hash)            { b.hash = h }
