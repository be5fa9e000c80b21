package rollbacker

import (
	"github.com/blocklattice/ledgerd/domain/ledger/model"
)

// rollbackOpen undoes an account's open block, unopening it entirely and
// restoring the pending entry it claimed.
func (r *Rollbacker) rollbackOpen(dbTx model.DBTransaction, block *model.OpenBlock) error {
	hash := block.Hash()

	amt, err := r.blockAmount(dbTx, block.Source)
	if err != nil {
		return err
	}
	sourceAccount, err := r.blocks.Account(dbTx, block.Source)
	if err != nil {
		return err
	}

	r.repWeights.Add(block.Representative, amt, true)

	if err := r.accounts.Delete(dbTx, block.AccountField, model.Epoch0); err != nil {
		return err
	}
	if err := r.blocks.Delete(dbTx, hash); err != nil {
		return err
	}

	key := model.PendingKey{Destination: block.AccountField, SendHash: block.Source}
	entry := model.PendingEntry{Source: sourceAccount, Amount: amt, Epoch: model.Epoch0}
	if err := r.pending.Put(dbTx, key, entry); err != nil {
		return err
	}

	return r.frontiers.Delete(dbTx, hash)
}
