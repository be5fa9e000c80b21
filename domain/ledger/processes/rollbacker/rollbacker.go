// Package rollbacker undoes already-applied blocks, one account-chain step
// at a time, walking back through whatever other accounts' chains depend
// on the block being removed before touching it.
package rollbacker

import (
	"github.com/blocklattice/ledgerd/domain/ledger/config"
	"github.com/blocklattice/ledgerd/domain/ledger/database"
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/ruleerrors"
	"github.com/blocklattice/ledgerd/domain/ledger/utils/amount"
	"github.com/blocklattice/ledgerd/infrastructure/logger"
	"github.com/pkg/errors"
)

var log = logger.RegisterSubSystem("RLBK")

// Rollbacker removes blocks from the head of an account chain backward,
// restoring the pending entries, representative weights, and frontier rows
// that applying them had consumed.
type Rollbacker struct {
	blocks        model.BlockStore
	accounts      model.AccountStore
	pending       model.PendingStore
	frontiers     model.FrontierStore
	confirmations model.ConfirmationHeightStore
	repWeights    model.RepWeights
	verifier      model.Verifier
	params        config.Params
}

// New returns a Rollbacker wired to the given stores.
func New(
	blocks model.BlockStore,
	accounts model.AccountStore,
	pending model.PendingStore,
	frontiers model.FrontierStore,
	confirmations model.ConfirmationHeightStore,
	repWeights model.RepWeights,
	verifier model.Verifier,
	params config.Params,
) *Rollbacker {
	return &Rollbacker{
		blocks:        blocks,
		accounts:      accounts,
		pending:       pending,
		frontiers:     frontiers,
		confirmations: confirmations,
		repWeights:    repWeights,
		verifier:      verifier,
		params:        params,
	}
}

// Rollback removes hash and everything built on top of it, one head block
// at a time, until hash itself no longer exists. It refuses to cross the
// owning account's confirmation height: once a block at or below that
// height would have to be removed, it stops and returns
// ErrRollbackBelowConfirmationHeight, leaving whatever was already rolled
// back in out (and in the store) in place.
func (r *Rollbacker) Rollback(dbTx model.DBTransaction, hash model.Hash, out *[]model.Block) error {
	_, targetSideband, _, err := r.blocks.Get(dbTx, hash)
	if err != nil {
		if database.IsNotFoundError(err) {
			return errors.WithStack(ruleerrors.ErrRollbackTargetNotFound)
		}
		return err
	}
	account := targetSideband.Account
	targetHeight := targetSideband.Height

	for {
		exists, err := r.blocks.Exists(dbTx, hash)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}

		confirmedHeight, found, err := r.confirmations.Get(dbTx, account)
		if err != nil {
			return err
		}
		if found && targetHeight <= confirmedHeight {
			return errors.WithStack(ruleerrors.ErrRollbackBelowConfirmationHeight)
		}

		info, found, err := r.accounts.Get(dbTx, account)
		if err != nil {
			return err
		}
		if !found {
			return errors.WithStack(ruleerrors.ErrCorruptAccountInfo)
		}
		headBlock, _, _, err := r.blocks.Get(dbTx, info.Head)
		if err != nil {
			return err
		}
		*out = append(*out, headBlock)
		if err := r.rollbackOne(dbTx, headBlock, out); err != nil {
			return err
		}
	}
}

func (r *Rollbacker) rollbackOne(dbTx model.DBTransaction, block model.Block, out *[]model.Block) error {
	switch b := block.(type) {
	case *model.SendBlock:
		return r.rollbackSend(dbTx, b, out)
	case *model.ReceiveBlock:
		return r.rollbackReceive(dbTx, b)
	case *model.OpenBlock:
		return r.rollbackOpen(dbTx, b)
	case *model.ChangeBlock:
		return r.rollbackChange(dbTx, b)
	case *model.StateBlock:
		return r.rollbackState(dbTx, b, out)
	default:
		return errors.WithStack(ruleerrors.ErrUnknownBlockType)
	}
}

// blockBalance returns a block's balance, treating the zero hash (an
// account's nonexistent "previous" before its open block) as balance zero.
func (r *Rollbacker) blockBalance(dbTx model.DBReader, hash model.Hash) (amount.Amount, error) {
	if hash.IsZero() {
		return amount.Zero, nil
	}
	return r.blocks.Balance(dbTx, hash)
}

// blockAmount returns the value transferred by the block at hash: the
// absolute difference between its balance and its predecessor's. This is
// recomputed from stored balances rather than from a (possibly already
// consumed) pending entry, so it stays correct even when rolling back a
// receive whose pending row no longer exists.
func (r *Rollbacker) blockAmount(dbTx model.DBReader, hash model.Hash) (amount.Amount, error) {
	if hash == r.params.GenesisHash {
		return r.params.GenesisAmount, nil
	}
	block, _, _, err := r.blocks.Get(dbTx, hash)
	if err != nil {
		return amount.Zero, err
	}
	blockBalance, err := r.blockBalance(dbTx, hash)
	if err != nil {
		return amount.Zero, err
	}
	previousBalance, err := r.blockBalance(dbTx, previousOf(block))
	if err != nil {
		return amount.Zero, err
	}
	if blockBalance.Cmp(previousBalance) > 0 {
		return blockBalance.Sub(previousBalance), nil
	}
	return previousBalance.Sub(blockBalance), nil
}

// representativeOf walks backward from hash until it reaches a block that
// carries an explicit representative field (open, change, or state; send
// and receive blocks carry none and implicitly keep whatever the chain's
// representative already was), and returns that block's hash.
func (r *Rollbacker) representativeOf(dbTx model.DBReader, hash model.Hash) (model.Hash, error) {
	current := hash
	for {
		if current.IsZero() {
			return model.Hash{}, nil
		}
		block, _, _, err := r.blocks.Get(dbTx, current)
		if err != nil {
			return model.Hash{}, err
		}
		switch b := block.(type) {
		case *model.OpenBlock, *model.ChangeBlock, *model.StateBlock:
			return current, nil
		case *model.SendBlock:
			current = b.Previous
		case *model.ReceiveBlock:
			current = b.Previous
		default:
			return model.Hash{}, errors.WithStack(ruleerrors.ErrUnknownBlockType)
		}
	}
}

func representativeField(block model.Block) model.Account {
	switch b := block.(type) {
	case *model.OpenBlock:
		return b.Representative
	case *model.ChangeBlock:
		return b.Representative
	case *model.StateBlock:
		return b.Representative
	default:
		return model.Account{}
	}
}

func previousOf(block model.Block) model.Hash {
	switch b := block.(type) {
	case *model.SendBlock:
		return b.Previous
	case *model.ReceiveBlock:
		return b.Previous
	case *model.ChangeBlock:
		return b.Previous
	case *model.StateBlock:
		return b.Previous
	default:
		return model.Hash{}
	}
}
