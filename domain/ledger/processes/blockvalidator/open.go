package blockvalidator

import (
	"github.com/blocklattice/ledgerd/domain/ledger/model"
)

// processOpen applies a legacy open block: the first block of a brand-new
// account, receiving its first pending send and establishing a representative.
func (v *Validator) processOpen(dbTx model.DBTransaction, block *model.OpenBlock, verified model.VerificationState) (model.ProcessResult, error) {
	hash := block.Hash()

	exists, err := v.blocks.Exists(dbTx, hash)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if exists {
		return result(model.Old), nil
	}

	if verified != model.VerificationValid {
		if !v.verifier.ValidateMessage(block.AccountField, hash, block.BlockSignature()) {
			return result(model.BadSignature), nil
		}
	}

	sourceExists, err := v.blocks.Exists(dbTx, block.Source)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if !sourceExists {
		return result(model.GapSource), nil
	}

	state, err := v.loadState(dbTx, block.AccountField)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if state.Exists() {
		return result(model.Fork), nil
	}

	pendingKey := model.PendingKey{Destination: block.AccountField, SendHash: block.Source}
	pendingEntry, found, err := v.pending.Get(dbTx, pendingKey)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if !found {
		return result(model.Unreceivable), nil
	}

	if block.AccountField == v.params.BurnAccount {
		return result(model.OpenedBurnAccount), nil
	}

	if pendingEntry.Epoch != model.Epoch0 {
		return result(model.Unreceivable), nil
	}

	if err := v.pending.Delete(dbTx, pendingKey, pendingEntry.Epoch); err != nil {
		return model.ProcessResult{}, err
	}

	sideband := model.Sideband{
		Type:      model.BlockTypeOpen,
		Account:   block.AccountField,
		Balance:   pendingEntry.Amount,
		Height:    1,
		Timestamp: now(),
	}
	if err := v.blocks.Put(dbTx, block, sideband, model.Epoch0); err != nil {
		return model.ProcessResult{}, err
	}

	newInfo := model.AccountInfo{Head: hash, Representative: block.Representative, OpenBlock: hash, Epoch: model.Epoch0}
	if err := v.accounts.Put(dbTx, block.AccountField, newInfo); err != nil {
		return model.ProcessResult{}, err
	}

	v.repWeights.Add(block.Representative, pendingEntry.Amount, false)

	if err := v.frontiers.Put(dbTx, hash, block.AccountField); err != nil {
		return model.ProcessResult{}, err
	}

	return model.ProcessResult{Code: model.Progress, Verified: model.VerificationValid, Account: block.AccountField, Amount: pendingEntry.Amount}, nil
}
