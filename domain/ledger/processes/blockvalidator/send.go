package blockvalidator

import (
	"github.com/blocklattice/ledgerd/domain/ledger/model"
)

// processSend applies a legacy send block: it debits the sending account
// and files a pending entry the destination can later receive.
func (v *Validator) processSend(dbTx model.DBTransaction, block *model.SendBlock, verified model.VerificationState) (model.ProcessResult, error) {
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

	if verified != model.VerificationValid {
		if !v.verifier.ValidateMessage(account, hash, block.BlockSignature()) {
			return result(model.BadSignature), nil
		}
	}

	state, err := v.loadState(dbTx, account)
	if err != nil {
		return model.ProcessResult{}, err
	}

	if state.Balance().Cmp(block.Balance) < 0 {
		return result(model.NegativeSpend), nil
	}
	sendAmount := state.Balance().Sub(block.Balance)

	v.repWeights.Add(state.Representative(), sendAmount, true)

	sideband := model.Sideband{
		Type:      model.BlockTypeSend,
		Account:   account,
		Balance:   block.Balance,
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

	pendingKey := model.PendingKey{Destination: block.Destination, SendHash: hash}
	pendingEntry := model.PendingEntry{Source: account, Amount: sendAmount, Epoch: model.Epoch0}
	if err := v.pending.Put(dbTx, pendingKey, pendingEntry); err != nil {
		return model.ProcessResult{}, err
	}

	if err := v.frontiers.Delete(dbTx, block.Previous); err != nil {
		return model.ProcessResult{}, err
	}
	if err := v.frontiers.Put(dbTx, hash, account); err != nil {
		return model.ProcessResult{}, err
	}

	return model.ProcessResult{Code: model.Progress, Verified: model.VerificationValid, Account: account, Amount: sendAmount, PendingAccount: block.Destination}, nil
}
