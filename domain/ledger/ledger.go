// Package ledger is the facade other subsystems talk to: it owns the
// account/block/pending/frontier stores and the in-memory RepWeights cache,
// and wraps the validator and rollbacker behind process() and rollback(),
// plus a set of read-only query helpers over the same stores.
package ledger

import (
	"github.com/blocklattice/ledgerd/domain/ledger/config"
	"github.com/blocklattice/ledgerd/domain/ledger/database"
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/processes/accountstate"
	"github.com/blocklattice/ledgerd/domain/ledger/processes/blockvalidator"
	"github.com/blocklattice/ledgerd/domain/ledger/processes/rollbacker"
	"github.com/blocklattice/ledgerd/domain/ledger/ruleerrors"
	"github.com/blocklattice/ledgerd/domain/ledger/utils/amount"
	"github.com/pkg/errors"
)

// Ledger coordinates the validator and rollbacker against a shared set of
// stores, and answers read-only queries over the same state.
type Ledger struct {
	blocks        model.BlockStore
	accounts      model.AccountStore
	pending       model.PendingStore
	frontiers     model.FrontierStore
	confirmations model.ConfirmationHeightStore
	repWeights    model.RepWeights
	verifier      model.Verifier
	params        config.Params

	validator  *blockvalidator.Validator
	rollbacker *rollbacker.Rollbacker

	checkBootstrapWeights bool
	cementedCount         uint64
}

// New returns a Ledger wired to the given stores and configuration.
func New(
	blocks model.BlockStore,
	accounts model.AccountStore,
	pending model.PendingStore,
	frontiers model.FrontierStore,
	confirmations model.ConfirmationHeightStore,
	repWeights model.RepWeights,
	verifier model.Verifier,
	params config.Params,
) *Ledger {
	return &Ledger{
		blocks:        blocks,
		accounts:      accounts,
		pending:       pending,
		frontiers:     frontiers,
		confirmations: confirmations,
		repWeights:    repWeights,
		verifier:      verifier,
		params:        params,

		validator:  blockvalidator.New(blocks, accounts, pending, frontiers, repWeights, verifier, params),
		rollbacker: rollbacker.New(blocks, accounts, pending, frontiers, confirmations, repWeights, verifier, params),

		checkBootstrapWeights: len(params.BootstrapWeights) > 0,
	}
}

// Warm performs the cold-start cache-warming Params.CacheReps and
// Params.CacheCementedCount ask for: rebuilding RepWeights from every stored
// account's representative and balance, and/or summing every account's
// confirmation height into CementedCount. Call it once against a fresh
// transaction before serving any other request; a Ledger that is never
// warmed simply starts with an empty RepWeights cache and a zero
// CementedCount, same as if both flags were false.
func (l *Ledger) Warm(dbTx model.DBReader) error {
	if l.params.CacheReps {
		if err := l.accounts.ForEach(dbTx, func(account model.Account, info model.AccountInfo) error {
			balance, err := l.blocks.Balance(dbTx, info.Head)
			if err != nil {
				return err
			}
			l.repWeights.Add(info.Representative, balance, false)
			return nil
		}); err != nil {
			return err
		}
	}
	if l.params.CacheCementedCount {
		var total uint64
		if err := l.confirmations.ForEach(dbTx, func(_ model.Account, height model.Height) error {
			total += uint64(height)
			return nil
		}); err != nil {
			return err
		}
		l.cementedCount = total
	}
	return nil
}

// CementedCount returns the sum of every account's confirmation height, as
// last computed by Warm. Zero if Params.CacheCementedCount was never set or
// Warm has not yet run.
func (l *Ledger) CementedCount() uint64 {
	return l.cementedCount
}

// Process validates and, if admissible, applies block. Callers compute and
// attach block's hash (via blockhashing.Seal or equivalent) before calling
// this; Process only ever reads it.
func (l *Ledger) Process(dbTx model.DBTransaction, block model.Block, verified model.VerificationState) (model.ProcessResult, error) {
	return l.validator.Process(dbTx, block, verified)
}

// Rollback removes hash and everything built on top of it, appending every
// removed block to out in the order it was rolled back.
func (l *Ledger) Rollback(dbTx model.DBTransaction, hash model.Hash, out *[]model.Block) error {
	return l.rollbacker.Rollback(dbTx, hash, out)
}

// Balance returns the account balance immediately after hash was applied,
// or zero if hash is the zero hash (an unopened account's "previous").
func (l *Ledger) Balance(dbTx model.DBReader, hash model.Hash) (amount.Amount, error) {
	if hash.IsZero() {
		return amount.Zero, nil
	}
	return l.blocks.Balance(dbTx, hash)
}

// AccountBalance returns account's current balance, or zero if it has never
// been opened.
func (l *Ledger) AccountBalance(dbTx model.DBReader, account model.Account) (amount.Amount, error) {
	state, err := accountstate.Load(dbTx, l.accounts, l.blocks, account)
	if err != nil {
		return amount.Zero, err
	}
	return state.Balance(), nil
}

// AccountPending sums every pending entry addressed to account, across both
// epoch tables.
func (l *Ledger) AccountPending(dbTx model.DBReader, account model.Account) (amount.Amount, error) {
	return l.pending.SumForAccount(dbTx, account)
}

// Amount returns the value transferred by the block at hash: the absolute
// difference between its balance and its predecessor's, except for the
// genesis block, which has no real predecessor and reports the configured
// genesis amount directly.
func (l *Ledger) Amount(dbTx model.DBReader, hash model.Hash) (amount.Amount, error) {
	if hash == l.params.GenesisHash {
		return l.params.GenesisAmount, nil
	}
	block, _, _, err := l.blocks.Get(dbTx, hash)
	if err != nil {
		return amount.Zero, err
	}
	blockBalance, err := l.Balance(dbTx, hash)
	if err != nil {
		return amount.Zero, err
	}
	previousBalance, err := l.Balance(dbTx, previousOf(block))
	if err != nil {
		return amount.Zero, err
	}
	if blockBalance.Cmp(previousBalance) > 0 {
		return blockBalance.Sub(previousBalance), nil
	}
	return previousBalance.Sub(blockBalance), nil
}

// Latest returns account's head block hash, or the zero hash if it has
// never been opened.
func (l *Ledger) Latest(dbTx model.DBReader, account model.Account) (model.Hash, error) {
	info, found, err := l.accounts.Get(dbTx, account)
	if err != nil {
		return model.Hash{}, err
	}
	if !found {
		return model.Hash{}, nil
	}
	return info.Head, nil
}

// LatestRoot returns account's head block hash, or account itself if it has
// never been opened — the root a new block's "previous" field must name.
func (l *Ledger) LatestRoot(dbTx model.DBReader, account model.Account) (model.Hash, error) {
	info, found, err := l.accounts.Get(dbTx, account)
	if err != nil {
		return model.Hash{}, err
	}
	if !found {
		return account, nil
	}
	return info.Head, nil
}

// Account returns the account that authored hash.
func (l *Ledger) Account(dbTx model.DBReader, hash model.Hash) (model.Account, error) {
	return l.blocks.Account(dbTx, hash)
}

// IsSend reports whether a state block's balance fell relative to its
// predecessor's (zero balance for a zero previous).
func (l *Ledger) IsSend(dbTx model.DBReader, block *model.StateBlock) (bool, error) {
	if block.Previous.IsZero() {
		return false, nil
	}
	previousBalance, err := l.Balance(dbTx, block.Previous)
	if err != nil {
		return false, err
	}
	return block.Balance.Cmp(previousBalance) < 0, nil
}

// BlockDestination returns the account a send is addressed to: the
// destination field of a legacy send, or the link of a sending state block.
// Every other variant returns the zero hash.
func (l *Ledger) BlockDestination(dbTx model.DBReader, block model.Block) (model.Account, error) {
	switch b := block.(type) {
	case *model.SendBlock:
		return b.Destination, nil
	case *model.StateBlock:
		isSend, err := l.IsSend(dbTx, b)
		if err != nil || !isSend {
			return model.Account{}, err
		}
		return b.Link, nil
	default:
		return model.Account{}, nil
	}
}

// BlockSource returns the hash of the send a receive claims: the source
// field of a legacy receive/open, or the link of a receiving state block.
// A sending state block returns the zero hash.
func (l *Ledger) BlockSource(dbTx model.DBReader, block model.Block) (model.Hash, error) {
	switch b := block.(type) {
	case *model.ReceiveBlock:
		return b.Source, nil
	case *model.OpenBlock:
		return b.Source, nil
	case *model.StateBlock:
		isSend, err := l.IsSend(dbTx, b)
		if err != nil || isSend {
			return model.Hash{}, err
		}
		return b.Link, nil
	default:
		return model.Hash{}, nil
	}
}

// Representative walks back from hash to the nearest block whose variant
// carries an explicit representative field, and returns that field's
// value. Returns the zero account if hash names no block.
func (l *Ledger) Representative(dbTx model.DBReader, hash model.Hash) (model.Account, error) {
	current := hash
	for {
		if current.IsZero() {
			return model.Account{}, nil
		}
		block, _, _, err := l.blocks.Get(dbTx, current)
		if err != nil {
			if database.IsNotFoundError(err) {
				return model.Account{}, nil
			}
			return model.Account{}, err
		}
		switch b := block.(type) {
		case *model.OpenBlock:
			return b.Representative, nil
		case *model.ChangeBlock:
			return b.Representative, nil
		case *model.StateBlock:
			return b.Representative, nil
		case *model.SendBlock:
			current = b.Previous
		case *model.ReceiveBlock:
			current = b.Previous
		default:
			return model.Account{}, errors.WithStack(ruleerrors.ErrUnknownBlockType)
		}
	}
}

// Successor returns the block that immediately follows a chain position
// named by (previous, account): previous is the preceding block's hash, or
// the zero hash if account has no chain yet (in which case its open block,
// if any, is returned).
func (l *Ledger) Successor(dbTx model.DBReader, previous model.Hash, account model.Account) (model.Block, error) {
	var successorHash model.Hash
	if previous.IsZero() {
		info, found, err := l.accounts.Get(dbTx, account)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		successorHash = info.OpenBlock
	} else {
		_, sideband, _, err := l.blocks.Get(dbTx, previous)
		if err != nil {
			return nil, err
		}
		successorHash = sideband.Successor
	}
	if successorHash.IsZero() {
		return nil, nil
	}
	block, _, _, err := l.blocks.Get(dbTx, successorHash)
	return block, err
}

// ForkedBlock returns the already-accepted block occupying the chain slot a
// not-yet-applied block would have claimed.
func (l *Ledger) ForkedBlock(dbTx model.DBReader, block model.Block) (model.Block, error) {
	previous, account, err := l.blockRoot(dbTx, block)
	if err != nil {
		return nil, err
	}
	existing, err := l.Successor(dbTx, previous, account)
	if err != nil {
		return nil, err
	}
	return existing, nil
}

func (l *Ledger) blockRoot(dbTx model.DBReader, block model.Block) (model.Hash, model.Account, error) {
	switch b := block.(type) {
	case *model.OpenBlock:
		return model.Hash{}, b.AccountField, nil
	case *model.StateBlock:
		return b.Previous, b.AccountField, nil
	case *model.SendBlock:
		account, err := l.blocks.Account(dbTx, b.Previous)
		return b.Previous, account, err
	case *model.ReceiveBlock:
		account, err := l.blocks.Account(dbTx, b.Previous)
		return b.Previous, account, err
	case *model.ChangeBlock:
		account, err := l.blocks.Account(dbTx, b.Previous)
		return b.Previous, account, err
	default:
		return model.Hash{}, model.Account{}, errors.WithStack(ruleerrors.ErrUnknownBlockType)
	}
}

// CouldFit reports whether every block referenced by block (its previous,
// and where applicable its source/link) already exists in the store — true
// for a genuinely new chain position, regardless of whether block itself
// would be accepted.
func (l *Ledger) CouldFit(dbTx model.DBReader, block model.Block) (bool, error) {
	switch b := block.(type) {
	case *model.SendBlock:
		return l.blocks.Exists(dbTx, b.Previous)
	case *model.ReceiveBlock:
		previousExists, err := l.blocks.Exists(dbTx, b.Previous)
		if err != nil || !previousExists {
			return false, err
		}
		return l.blocks.Exists(dbTx, b.Source)
	case *model.OpenBlock:
		return l.blocks.Exists(dbTx, b.Source)
	case *model.ChangeBlock:
		return l.blocks.Exists(dbTx, b.Previous)
	case *model.StateBlock:
		if !b.Previous.IsZero() {
			previousExists, err := l.blocks.Exists(dbTx, b.Previous)
			if err != nil || !previousExists {
				return false, err
			}
		}
		isSend, err := l.IsSend(dbTx, b)
		if err != nil {
			return false, err
		}
		if isSend || b.Link.IsZero() || l.verifier.IsEpochLink(b.Link) {
			return true, nil
		}
		return l.blocks.Exists(dbTx, b.Link)
	default:
		return false, errors.WithStack(ruleerrors.ErrUnknownBlockType)
	}
}

// Weight returns representative's current voting weight. While the store
// holds fewer blocks than BootstrapWeightMaxBlocks, a configured bootstrap
// table is consulted in preference to the live cache, since the cache isn't
// trustworthy until enough of the chain has actually been replayed.
func (l *Ledger) Weight(dbTx model.DBReader, representative model.Account) (amount.Amount, error) {
	if l.checkBootstrapWeights {
		count, err := l.blocks.Count(dbTx)
		if err != nil {
			return amount.Zero, err
		}
		if count < l.params.BootstrapWeightMaxBlocks {
			if w, ok := l.params.BootstrapWeights[representative]; ok {
				return w, nil
			}
		} else {
			l.checkBootstrapWeights = false
		}
	}
	return l.repWeights.Get(representative), nil
}

// BlockConfirmed reports whether hash's block height is at or below its
// account's confirmation height.
func (l *Ledger) BlockConfirmed(dbTx model.DBReader, hash model.Hash) (bool, error) {
	height, err := l.blocks.Height(dbTx, hash)
	if err != nil {
		if database.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	if height == 0 {
		return false, nil
	}
	account, err := l.blocks.Account(dbTx, hash)
	if err != nil {
		return false, err
	}
	confirmedHeight, found, err := l.confirmations.Get(dbTx, account)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return confirmedHeight >= height, nil
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
