package blockvalidator

import (
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/utils/amount"
)

// processChange applies a legacy change-representative block: it moves no
// balance, only the account's voting representative.
func (v *Validator) processChange(dbTx model.DBTransaction, block *model.ChangeBlock, verified model.VerificationState) (model.ProcessResult, error) {
	hash := block.Hash()

	exists, err := v.blocks.Exists(dbTx, hash)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if exists {
		return result(model.Old), nil
	}

	previousBlock, _, _, err := v.blocks.Get(dbTx, block.Previous)
	if err != nil {
		if isNotFound(err) {
			return result(model.GapPrevious), nil
		}
		return model.ProcessResult{}, err
	}
	if !previousBlock.Type().IsLegacy() {
		return result(model.BlockPosition), nil
	}

	account, found, err := v.frontiers.Get(dbTx, block.Previous)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if !found {
		return result(model.Fork), nil
	}

	state, err := v.loadState(dbTx, account)
	if err != nil {
		return model.ProcessResult{}, err
	}

	if verified != model.VerificationValid {
		if !v.verifier.ValidateMessage(account, hash, block.BlockSignature()) {
			return result(model.BadSignature), nil
		}
	}

	balance := state.Balance()
	sideband := model.Sideband{
		Type:      model.BlockTypeChange,
		Account:   account,
		Balance:   balance,
		Height:    state.BlockCount() + 1,
		Timestamp: now(),
	}
	if err := v.blocks.Put(dbTx, block, sideband, model.Epoch0); err != nil {
		return model.ProcessResult{}, err
	}
	if err := v.blocks.SetSuccessor(dbTx, block.Previous, hash); err != nil {
		return model.ProcessResult{}, err
	}

	v.repWeights.Add(block.Representative, balance, false)
	v.repWeights.Add(state.Representative(), balance, true)

	newInfo := model.AccountInfo{Head: hash, Representative: block.Representative, OpenBlock: state.OpenBlock(), Epoch: model.Epoch0}
	if err := v.accounts.Put(dbTx, account, newInfo); err != nil {
		return model.ProcessResult{}, err
	}
	if err := v.frontiers.Delete(dbTx, block.Previous); err != nil {
		return model.ProcessResult{}, err
	}
	if err := v.frontiers.Put(dbTx, hash, account); err != nil {
		return model.ProcessResult{}, err
	}

	return model.ProcessResult{Code: model.Progress, Verified: model.VerificationValid, Account: account, Amount: amount.Zero}, nil
}
