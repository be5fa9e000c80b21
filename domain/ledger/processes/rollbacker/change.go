package rollbacker

import (
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/processes/accountstate"
)

// rollbackChange undoes a legacy representative-change block, restoring
// whichever representative was in effect just before it.
func (r *Rollbacker) rollbackChange(dbTx model.DBTransaction, block *model.ChangeBlock) error {
	hash := block.Hash()

	repBlockHash, err := r.representativeOf(dbTx, block.Previous)
	if err != nil {
		return err
	}
	account, err := r.blocks.Account(dbTx, block.Previous)
	if err != nil {
		return err
	}
	state, err := accountstate.Load(dbTx, r.accounts, r.blocks, account)
	if err != nil {
		return err
	}
	balance, err := r.blockBalance(dbTx, block.Previous)
	if err != nil {
		return err
	}
	repBlock, _, _, err := r.blocks.Get(dbTx, repBlockHash)
	if err != nil {
		return err
	}
	representative := representativeField(repBlock)

	r.repWeights.Add(block.Representative, balance, true)
	r.repWeights.Add(representative, balance, false)

	if err := r.blocks.Delete(dbTx, hash); err != nil {
		return err
	}

	newInfo := model.AccountInfo{
		Head:           block.Previous,
		Representative: representative,
		OpenBlock:      state.OpenBlock(),
		Epoch:          model.Epoch0,
	}
	if err := r.accounts.Put(dbTx, account, newInfo); err != nil {
		return err
	}

	if err := r.frontiers.Delete(dbTx, hash); err != nil {
		return err
	}
	if err := r.frontiers.Put(dbTx, block.Previous, account); err != nil {
		return err
	}
	return r.blocks.SetSuccessor(dbTx, block.Previous, model.Hash{})
}
