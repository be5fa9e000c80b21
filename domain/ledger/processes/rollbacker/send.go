package rollbacker

import (
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/processes/accountstate"
	"github.com/blocklattice/ledgerd/domain/ledger/ruleerrors"
	"github.com/pkg/errors"
)

// rollbackSend undoes a legacy send block: before the pending entry it
// created can be restored, the destination account's chain is rolled back
// (possibly several blocks deep) until whatever received that entry is
// gone.
func (r *Rollbacker) rollbackSend(dbTx model.DBTransaction, block *model.SendBlock, out *[]model.Block) error {
	hash := block.Hash()
	key := model.PendingKey{Destination: block.Destination, SendHash: hash}

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
		info, found, err := r.accounts.Get(dbTx, block.Destination)
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

	state, err := accountstate.Load(dbTx, r.accounts, r.blocks, pendingEntry.Source)
	if err != nil {
		return err
	}

	if err := r.pending.Delete(dbTx, key, pendingEntry.Epoch); err != nil {
		return err
	}
	r.repWeights.Add(state.Representative(), pendingEntry.Amount, false)

	newInfo := model.AccountInfo{
		Head:           block.Previous,
		Representative: state.Representative(),
		OpenBlock:      state.OpenBlock(),
		Epoch:          model.Epoch0,
	}
	if err := r.accounts.Put(dbTx, pendingEntry.Source, newInfo); err != nil {
		return err
	}
	if err := r.blocks.Delete(dbTx, hash); err != nil {
		return err
	}
	if err := r.frontiers.Delete(dbTx, hash); err != nil {
		return err
	}
	if err := r.frontiers.Put(dbTx, block.Previous, pendingEntry.Source); err != nil {
		return err
	}
	return r.blocks.SetSuccessor(dbTx, block.Previous, model.Hash{})
}
