package blockvalidator

import (
	"github.com/blocklattice/ledgerd/domain/ledger/model"
)

// processReceive applies a legacy receive block. Unlike the state-block
// receive path, a legacy receive only ever accepts a pending entry filed at
// epoch_0: a pending entry left by a state-era send is rejected as
// unreceivable here, even though processState's receive path would absorb
// it without complaint. This asymmetry comes directly from upstream and is
// intentional, not a bug to square away — it is the reason clients are
// steered toward state blocks once any epoch upgrade has happened.
func (v *Validator) processReceive(dbTx model.DBTransaction, block *model.ReceiveBlock, verified model.VerificationState) (model.ProcessResult, error) {
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
		// No frontier entry for previous at all means either we've never
		// seen it (gap) or we have, but a fork already built on top of it
		// (a signed conflicting block at the same height).
		previousExists, err := v.blocks.Exists(dbTx, block.Previous)
		if err != nil {
			return model.ProcessResult{}, err
		}
		if previousExists {
			return result(model.Fork), nil
		}
		return result(model.GapPrevious), nil
	}

	if verified != model.VerificationValid {
		if !v.verifier.ValidateMessage(account, hash, block.BlockSignature()) {
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

	state, err := v.loadState(dbTx, account)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if state.Head() != block.Previous {
		return result(model.GapPrevious), nil
	}

	pendingKey := model.PendingKey{Destination: account, SendHash: block.Source}
	pendingEntry, found, err := v.pending.Get(dbTx, pendingKey)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if !found {
		return result(model.Unreceivable), nil
	}
	if pendingEntry.Epoch != model.Epoch0 {
		return result(model.Unreceivable), nil
	}

	newBalance := state.Balance().Add(pendingEntry.Amount)

	if err := v.pending.Delete(dbTx, pendingKey, pendingEntry.Epoch); err != nil {
		return model.ProcessResult{}, err
	}

	sideband := model.Sideband{
		Type:      model.BlockTypeReceive,
		Account:   account,
		Balance:   newBalance,
		Height:    state.BlockCount() + 1,
		Timestamp: now(),
	}
	if err := v.blocks.Put(dbTx, block, sideband, model.Epoch0); err != nil {
		return model.ProcessResult{}, err
	}
	if err := v.blocks.SetSuccessor(dbTx, block.Previous, hash); err != nil {
		return model.ProcessResult{}, err
	}

	newInfo := model.AccountInfo{Head: hash, Representative: state.Representative(), OpenBlock: state.OpenBlock(), Epoch: model.Epoch0}
	if err := v.accounts.Put(dbTx, account, newInfo); err != nil {
		return model.ProcessResult{}, err
	}

	v.repWeights.Add(state.Representative(), pendingEntry.Amount, false)

	if err := v.frontiers.Delete(dbTx, block.Previous); err != nil {
		return model.ProcessResult{}, err
	}
	if err := v.frontiers.Put(dbTx, hash, account); err != nil {
		return model.ProcessResult{}, err
	}

	return model.ProcessResult{Code: model.Progress, Verified: model.VerificationValid, Account: account, Amount: pendingEntry.Amount}, nil
}
