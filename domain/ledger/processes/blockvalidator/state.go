package blockvalidator

import (
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/utils/amount"
)

// processState dispatches a state block to either the epoch-upgrade path
// or the regular send/receive/change/open path, depending on whether its
// link names a configured epoch-upgrade address and its balance is
// unchanged from its previous block. A state block under an epoch link
// whose previous is missing is reported as gap_previous without being
// classified further; when it is resubmitted after the gap is filled it is
// classified normally.
func (v *Validator) processState(dbTx model.DBTransaction, block *model.StateBlock, verified model.VerificationState) (model.ProcessResult, error) {
	isEpochBlock := false
	if v.verifier.IsEpochLink(block.Link) {
		prevBalance := amount.Zero
		if !block.Previous.IsZero() {
			exists, err := v.blocks.Exists(dbTx, block.Previous)
			if err != nil {
				return model.ProcessResult{}, err
			}
			if !exists {
				return model.ProcessResult{Code: model.GapPrevious, Verified: v.preDecideStateSignature(block, verified)}, nil
			}
			b, err := v.blocks.Balance(dbTx, block.Previous)
			if err != nil {
				return model.ProcessResult{}, err
			}
			prevBalance = b
		}
		isEpochBlock = block.Balance.Cmp(prevBalance) == 0
	}

	if isEpochBlock {
		return v.processEpochBlock(dbTx, block, verified)
	}
	return v.processStateBlockImpl(dbTx, block, verified)
}

// preDecideStateSignature resolves a state block's signature before it can
// be classified as an epoch block or a regular one, so that once its
// previous block arrives and it is resubmitted, neither processStateBlockImpl
// nor processEpochBlock needs to run ValidateMessage a second time.
func (v *Validator) preDecideStateSignature(block *model.StateBlock, verified model.VerificationState) model.VerificationState {
	if verified == model.VerificationValid || verified == model.VerificationValidEpoch {
		return verified
	}
	hash := block.Hash()
	if v.verifier.ValidateMessage(v.verifier.Signer(block.Link), hash, block.BlockSignature()) {
		return model.VerificationValidEpoch
	}
	if v.verifier.ValidateMessage(block.AccountField, hash, block.BlockSignature()) {
		return model.VerificationValid
	}
	return model.VerificationUnknown
}

func (v *Validator) processStateBlockImpl(dbTx model.DBTransaction, block *model.StateBlock, verified model.VerificationState) (model.ProcessResult, error) {
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

	if block.AccountField.IsZero() {
		return result(model.OpenedBurnAccount), nil
	}

	epoch := model.Epoch0
	state, err := v.loadState(dbTx, block.AccountField)
	if err != nil {
		return model.ProcessResult{}, err
	}

	isSend := false
	txAmount := block.Balance

	if state.Exists() {
		epoch = state.Epoch()
		if block.Previous.IsZero() {
			return result(model.Fork), nil
		}
		previousExists, err := v.blocks.Exists(dbTx, block.Previous)
		if err != nil {
			return model.ProcessResult{}, err
		}
		if !previousExists {
			return result(model.GapPrevious), nil
		}
		isSend = block.Balance.Cmp(state.Balance()) < 0
		if isSend {
			txAmount = state.Balance().Sub(block.Balance)
		} else {
			txAmount = block.Balance.Sub(state.Balance())
		}
		if block.Previous != state.Head() {
			return result(model.Fork), nil
		}
	} else {
		if !block.Previous.IsZero() {
			return result(model.GapPrevious), nil
		}
		if block.Link.IsZero() {
			return result(model.GapSource), nil
		}
	}

	var pendingEntryEpoch model.Epoch
	if !isSend {
		if !block.Link.IsZero() {
			sourceExists, err := v.blocks.Exists(dbTx, block.Link)
			if err != nil {
				return model.ProcessResult{}, err
			}
			if !sourceExists {
				return result(model.GapSource), nil
			}
			pendingKey := model.PendingKey{Destination: block.AccountField, SendHash: block.Link}
			pendingEntry, found, err := v.pending.Get(dbTx, pendingKey)
			if err != nil {
				return model.ProcessResult{}, err
			}
			if !found {
				return result(model.Unreceivable), nil
			}
			if txAmount.Cmp(pendingEntry.Amount) != 0 {
				return result(model.BalanceMismatch), nil
			}
			epoch = model.MaxEpoch(epoch, pendingEntry.Epoch)
			pendingEntryEpoch = pendingEntry.Epoch
		} else if !txAmount.IsZero() {
			return result(model.BalanceMismatch), nil
		}
	}

	fromEpoch := model.Epoch0
	if state.Exists() {
		fromEpoch = state.Epoch()
	}

	sideband := model.Sideband{
		Type:      model.BlockTypeState,
		Account:   block.AccountField,
		Balance:   block.Balance,
		Height:    state.BlockCount() + 1,
		Timestamp: now(),
	}
	if err := v.blocks.Put(dbTx, block, sideband, epoch); err != nil {
		return model.ProcessResult{}, err
	}
	if state.Exists() {
		if err := v.blocks.SetSuccessor(dbTx, block.Previous, hash); err != nil {
			return model.ProcessResult{}, err
		}
	}

	if !state.Representative().IsZero() {
		v.repWeights.Add(state.Representative(), state.Balance(), true)
	}
	v.repWeights.Add(block.Representative, block.Balance, false)

	if isSend {
		pendingKey := model.PendingKey{Destination: block.Link, SendHash: hash}
		pendingEntry := model.PendingEntry{Source: block.AccountField, Amount: txAmount, Epoch: epoch}
		if err := v.pending.Put(dbTx, pendingKey, pendingEntry); err != nil {
			return model.ProcessResult{}, err
		}
	} else if !block.Link.IsZero() {
		pendingKey := model.PendingKey{Destination: block.AccountField, SendHash: block.Link}
		if err := v.pending.Delete(dbTx, pendingKey, pendingEntryEpoch); err != nil {
			return model.ProcessResult{}, err
		}
	}

	openBlock := hash
	if state.Exists() && !state.OpenBlock().IsZero() {
		openBlock = state.OpenBlock()
	}
	newInfo := model.AccountInfo{Head: hash, Representative: block.Representative, OpenBlock: openBlock, Epoch: epoch}
	if err := v.accounts.Move(dbTx, block.AccountField, fromEpoch, epoch, newInfo); err != nil {
		return model.ProcessResult{}, err
	}

	if state.Exists() {
		_, found, err := v.frontiers.Get(dbTx, state.Head())
		if err != nil {
			return model.ProcessResult{}, err
		}
		if found {
			if err := v.frontiers.Delete(dbTx, state.Head()); err != nil {
				return model.ProcessResult{}, err
			}
		}
	}

	return model.ProcessResult{Code: model.Progress, Verified: model.VerificationValid, Account: block.AccountField, Amount: txAmount, StateIsSend: isSend}, nil
}

func (v *Validator) processEpochBlock(dbTx model.DBTransaction, block *model.StateBlock, verified model.VerificationState) (model.ProcessResult, error) {
	hash := block.Hash()

	exists, err := v.blocks.Exists(dbTx, hash)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if exists {
		return result(model.Old), nil
	}

	if verified != model.VerificationValidEpoch {
		if !v.verifier.ValidateMessage(v.verifier.Signer(block.Link), hash, block.BlockSignature()) {
			return result(model.BadSignature), nil
		}
	}

	if block.AccountField.IsZero() {
		return result(model.OpenedBurnAccount), nil
	}

	state, err := v.loadState(dbTx, block.AccountField)
	if err != nil {
		return model.ProcessResult{}, err
	}

	if state.Exists() {
		if block.Previous.IsZero() {
			return result(model.Fork), nil
		}
		if block.Previous != state.Head() {
			return result(model.Fork), nil
		}
		if block.Representative != state.Representative() {
			return result(model.RepresentativeMismatch), nil
		}
	} else if !block.Representative.IsZero() {
		return result(model.RepresentativeMismatch), nil
	}

	currentEpoch := model.Epoch0
	if state.Exists() {
		currentEpoch = state.Epoch()
	}
	if !(currentEpoch < v.verifier.Epoch(block.Link)) {
		return result(model.BlockPosition), nil
	}

	if block.Balance.Cmp(state.Balance()) != 0 {
		return result(model.BalanceMismatch), nil
	}

	sideband := model.Sideband{
		Type:      model.BlockTypeState,
		Account:   block.AccountField,
		Balance:   state.Balance(),
		Height:    state.BlockCount() + 1,
		Timestamp: now(),
	}
	// The epoch an upgrade block is written at is always Epoch1, regardless
	// of which epoch link the block names: this network has only ever
	// defined one upgradeable epoch, and upstream writes epoch_1
	// unconditionally here rather than consulting the link's own epoch.
	if err := v.blocks.Put(dbTx, block, sideband, model.Epoch1); err != nil {
		return model.ProcessResult{}, err
	}
	if state.Exists() {
		if err := v.blocks.SetSuccessor(dbTx, block.Previous, hash); err != nil {
			return model.ProcessResult{}, err
		}
	}

	openBlock := hash
	if state.Exists() && !state.OpenBlock().IsZero() {
		openBlock = state.OpenBlock()
	}
	newInfo := model.AccountInfo{Head: hash, Representative: block.Representative, OpenBlock: openBlock, Epoch: model.Epoch1}
	if err := v.accounts.Move(dbTx, block.AccountField, currentEpoch, model.Epoch1, newInfo); err != nil {
		return model.ProcessResult{}, err
	}

	if state.Exists() {
		_, found, err := v.frontiers.Get(dbTx, state.Head())
		if err != nil {
			return model.ProcessResult{}, err
		}
		if found {
			if err := v.frontiers.Delete(dbTx, state.Head()); err != nil {
				return model.ProcessResult{}, err
			}
		}
	}

	return model.ProcessResult{Code: model.Progress, Verified: model.VerificationValidEpoch, Account: block.AccountField, Amount: amount.Zero}, nil
}
