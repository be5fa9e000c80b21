// Package blockvalidator applies incoming blocks to the ledger's stores,
// one account-chain step at a time. Every exported entry point runs inside
// a caller-supplied write transaction and returns a ProcessResult whose
// Code names exactly why a block was accepted or rejected.
package blockvalidator

import (
	"github.com/blocklattice/ledgerd/domain/ledger/config"
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/processes/accountstate"
	"github.com/blocklattice/ledgerd/domain/ledger/ruleerrors"
	"github.com/blocklattice/ledgerd/infrastructure/logger"
	"github.com/blocklattice/ledgerd/util/mstime"
	"github.com/pkg/errors"
)

var log = logger.RegisterSubSystem("BVAL")

// Validator applies blocks against the account/block/pending/frontier
// tables and keeps RepWeights in sync as balances move.
type Validator struct {
	blocks     model.BlockStore
	accounts   model.AccountStore
	pending    model.PendingStore
	frontiers  model.FrontierStore
	repWeights model.RepWeights
	verifier   model.Verifier
	params     config.Params
}

// New returns a Validator wired to the given stores.
func New(
	blocks model.BlockStore,
	accounts model.AccountStore,
	pending model.PendingStore,
	frontiers model.FrontierStore,
	repWeights model.RepWeights,
	verifier model.Verifier,
	params config.Params,
) *Validator {
	return &Validator{
		blocks:     blocks,
		accounts:   accounts,
		pending:    pending,
		frontiers:  frontiers,
		repWeights: repWeights,
		verifier:   verifier,
		params:     params,
	}
}

// Process type-switches on block and dispatches to the matching per-variant
// check-and-apply routine.
func (v *Validator) Process(dbTx model.DBTransaction, block model.Block, verified model.VerificationState) (model.ProcessResult, error) {
	switch b := block.(type) {
	case *model.SendBlock:
		return v.processSend(dbTx, b, verified)
	case *model.ReceiveBlock:
		return v.processReceive(dbTx, b, verified)
	case *model.OpenBlock:
		return v.processOpen(dbTx, b, verified)
	case *model.ChangeBlock:
		return v.processChange(dbTx, b, verified)
	case *model.StateBlock:
		return v.processState(dbTx, b, verified)
	default:
		return model.ProcessResult{}, errors.WithStack(ruleerrors.ErrUnknownBlockType)
	}
}

func (v *Validator) loadState(dbTx model.DBReader, account model.Account) (accountstate.State, error) {
	return accountstate.Load(dbTx, v.accounts, v.blocks, account)
}

func now() model.Timestamp {
	return model.Timestamp(mstime.Now().Unix())
}

func result(code model.ProcessCode) model.ProcessResult {
	return model.ProcessResult{Code: code}
}
