package rollbacker

import (
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/processes/accountstate"
	"github.com/blocklattice/ledgerd/domain/ledger/ruleerrors"
	"github.com/pkg/errors"
)

// rollbackState undoes a state block. Because a state block can send,
// receive, open an account, or change its representative all in one, this
// has to recompute which of those it did by comparing its declared balance
// against its predecessor's.
func (r *Rollbacker) rollbackState(dbTx model.DBTransaction, block *model.StateBlock, out *[]model.Block) error {
	hash := block.Hash()

	var repBlockHash model.Hash
	if !block.Previous.IsZero() {
		h, err := r.representativeOf(dbTx, block.Previous)
		if err != nil {
			return err
		}
		repBlockHash = h
	}

	balance, err := r.blockBalance(dbTx, block.Previous)
	if err != nil {
		return err
	}
	isSend := block.Balance.Cmp(balance) < 0

	representative := model.Account{}
	if !repBlockHash.IsZero() {
		repBlock, _, _, err := r.blocks.Get(dbTx, repBlockHash)
		if err != nil {
			return err
		}
		representative = representativeField(repBlock)
	}

	r.repWeights.Add(block.Representative, block.Balance, true)
	if !repBlockHash.IsZero() {
		r.repWeights.Add(representative, balance, false)
	}

	state, err := accountstate.Load(dbTx, r.accounts, r.blocks, block.AccountField)
	if err != nil {
		return err
	}

	if isSend {
		key := model.PendingKey{Destination: block.Link, SendHash: hash}
		var pendingEntry model.PendingEntry
		for {
			entry, found, err := r.pending.Get(dbTx, key)
			if err != nil {
				return err
			}
			if found {
				pendingEntry = entry
				break
			}
			info, found, err := r.accounts.Get(dbTx, block.Link)
			if err != nil {
				return err
			}
			if !found {
				return errors.WithStack(ruleerrors.ErrCorruptAccountInfo)
			}
			if err := r.Rollback(dbTx, info.Head, out); err != nil {
				return err
			}
		}
		if err := r.pending.Delete(dbTx, key, pendingEntry.Epoch); err != nil {
			return err
		}
	} else if !block.Link.IsZero() && !r.verifier.IsEpochLink(block.Link) {
		sourceEpoch, err := r.blocks.Epoch(dbTx, block.Link)
		if err != nil {
			return err
		}
		sourceAccount, err := r.blocks.Account(dbTx, block.Link)
		if err != nil {
			return err
		}
		pendingAmount := block.Balance.Sub(balance)
		key := model.PendingKey{Destination: block.AccountField, SendHash: block.Link}
		entry := model.PendingEntry{Source: sourceAccount, Amount: pendingAmount, Epoch: sourceEpoch}
		if err := r.pending.Put(dbTx, key, entry); err != nil {
			return err
		}
	}

	if block.Previous.IsZero() {
		// The account never existed before this block opened it; undoing it
		// removes the account entirely, confirmation height included.
		if err := r.confirmations.Delete(dbTx, block.AccountField); err != nil {
			return err
		}
		if err := r.accounts.Delete(dbTx, block.AccountField, state.Epoch()); err != nil {
			return err
		}
	} else {
		previousVersion, err := r.blocks.Epoch(dbTx, block.Previous)
		if err != nil {
			return err
		}
		newInfo := model.AccountInfo{
			Head:           block.Previous,
			Representative: representative,
			OpenBlock:      state.OpenBlock(),
			Epoch:          previousVersion,
		}
		if err := r.accounts.Move(dbTx, block.AccountField, state.Epoch(), previousVersion, newInfo); err != nil {
			return err
		}
	}

	if previousExists, err := r.blocks.Exists(dbTx, block.Previous); err != nil {
		return err
	} else if previousExists {
		if err := r.blocks.SetSuccessor(dbTx, block.Previous, model.Hash{}); err != nil {
			return err
		}
		previousBlock, _, _, err := r.blocks.Get(dbTx, block.Previous)
		if err != nil {
			return err
		}
		if previousBlock.Type().IsLegacy() {
			if err := r.frontiers.Put(dbTx, block.Previous, block.AccountField); err != nil {
				return err
			}
		}
	}

	return r.blocks.Delete(dbTx, hash)
}
