// Package ledgertest wires a complete, disposable Ledger — real on-disk
// store, real ed25519 verifier, seeded genesis account — for use from
// package tests anywhere in the module, the same way the teacher's own
// consensus package centralizes test wiring behind a small helper type
// instead of repeating store/config construction in every test file.
package ledgertest

import (
	"crypto/ed25519"
	"testing"

	"github.com/blocklattice/ledgerd/domain/crypto"
	"github.com/blocklattice/ledgerd/domain/ledger"
	"github.com/blocklattice/ledgerd/domain/ledger/config"
	"github.com/blocklattice/ledgerd/domain/ledger/datastructures/accountstore"
	"github.com/blocklattice/ledgerd/domain/ledger/datastructures/blockstore"
	"github.com/blocklattice/ledgerd/domain/ledger/datastructures/confirmationheightstore"
	"github.com/blocklattice/ledgerd/domain/ledger/datastructures/frontierstore"
	"github.com/blocklattice/ledgerd/domain/ledger/datastructures/pendingstore"
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/processes/repweights"
	"github.com/blocklattice/ledgerd/domain/ledger/utils/amount"
	"github.com/blocklattice/ledgerd/domain/ledger/utils/blockhashing"
	"github.com/blocklattice/ledgerd/infrastructure/db/database/ldb"
)

// GenesisAmount is the balance every harness's seeded genesis account
// starts with.
var GenesisAmount = amount.FromUint64(1_000_000_000)

// Harness bundles a fresh Ledger, its backing stores, and an ed25519
// keypair registry so tests can sign blocks for accounts they mint with
// NewAccount.
type Harness struct {
	T testing.TB

	DB            model.DBManager
	Ledger        *ledger.Ledger
	Blocks        model.BlockStore
	Accounts      model.AccountStore
	Pending       model.PendingStore
	Frontiers     model.FrontierStore
	Confirmations model.ConfirmationHeightStore
	RepWeights    model.RepWeights
	Verifier      *crypto.Verifier
	Params        config.Params

	GenesisAccount model.Account
	GenesisHash    model.Hash

	// Epoch1Link and EpochSigner are only populated when the harness is
	// built with NewWithEpochLink; most tests have no need of an
	// epoch-upgrade table.
	Epoch1Link  model.Hash
	EpochSigner model.Account

	keys map[model.Account]ed25519.PrivateKey
}

// New opens a harness backed by a temporary leveldb directory (removed
// automatically when the test finishes) with a genesis account already
// seeded directly into the stores. Seeding genesis by direct store writes,
// rather than by running it through Ledger.Process, mirrors how a real
// account-chain network hardcodes its genesis block: it has no real
// predecessor send to receive, so there is nothing for a process() call to
// validate against.
func New(t testing.TB) *Harness {
	return newHarness(t, false)
}

// NewWithEpochLink is like New but also configures a single epoch_1 link
// pinned to a freshly minted signer account, exposed as h.Epoch1Link and
// h.EpochSigner, for tests exercising epoch-upgrade blocks.
func NewWithEpochLink(t testing.TB) *Harness {
	return newHarness(t, true)
}

func newHarness(t testing.TB, withEpochLink bool) *Harness {
	t.Helper()

	db, err := ldb.NewLevelDB(t.TempDir())
	if err != nil {
		t.Fatalf("ledgertest: NewLevelDB: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	h := &Harness{
		T:    t,
		DB:   db,
		keys: make(map[model.Account]ed25519.PrivateKey),
	}

	h.Blocks = blockstore.New()
	h.Accounts = accountstore.New()
	h.Pending = pendingstore.New()
	h.Frontiers = frontierstore.New()
	h.Confirmations = confirmationheightstore.New()
	h.RepWeights = repweights.New()

	if withEpochLink {
		signerPub, signerPriv, err := ed25519.GenerateKey(nil)
		if err != nil {
			t.Fatalf("ledgertest: GenerateKey: %v", err)
		}
		var signer model.Account
		copy(signer[:], signerPub)
		h.keys[signer] = signerPriv
		h.EpochSigner = signer

		linkBytes := ed25519.PrivateKey(signerPriv).Seed()
		var link model.Hash
		copy(link[:], linkBytes)
		h.Epoch1Link = link

		h.Verifier = crypto.New([]crypto.EpochLink{
			{Link: link, Epoch: model.Epoch1, Signer: signer},
		})
	} else {
		h.Verifier = crypto.New(nil)
	}

	genesisAccount := h.NewAccount()
	h.GenesisAccount = genesisAccount

	genesisBlock := &model.OpenBlock{
		AccountField:   genesisAccount,
		Source:         model.Hash{},
		Representative: genesisAccount,
	}
	hash := blockhashing.HashBlock(genesisBlock)
	genesisBlock.Signature_ = h.Sign(genesisAccount, hash)
	h.GenesisHash = blockhashing.Seal(genesisBlock)

	h.Params = config.Params{
		GenesisAccount: genesisAccount,
		GenesisAmount:  GenesisAmount,
		GenesisHash:    h.GenesisHash,
		BurnAccount:    model.Account{},
	}

	h.Ledger = ledger.New(h.Blocks, h.Accounts, h.Pending, h.Frontiers, h.Confirmations, h.RepWeights, h.Verifier, h.Params)

	h.Write(func(dbTx model.DBTransaction) error {
		sideband := model.Sideband{
			Type:      model.BlockTypeOpen,
			Account:   genesisAccount,
			Balance:   GenesisAmount,
			Height:    1,
			Timestamp: 0,
		}
		if err := h.Blocks.Put(dbTx, genesisBlock, sideband, model.Epoch0); err != nil {
			return err
		}
		info := model.AccountInfo{Head: h.GenesisHash, Representative: genesisAccount, OpenBlock: h.GenesisHash, Epoch: model.Epoch0}
		if err := h.Accounts.Put(dbTx, genesisAccount, info); err != nil {
			return err
		}
		if err := h.Frontiers.Put(dbTx, h.GenesisHash, genesisAccount); err != nil {
			return err
		}
		if err := h.Confirmations.Put(dbTx, genesisAccount, 1); err != nil {
			return err
		}
		h.RepWeights.Add(genesisAccount, GenesisAmount, false)
		return nil
	})

	return h
}

// NewAccount mints a fresh ed25519 keypair and returns its account, so that
// tests can sign blocks it authors with Sign.
func (h *Harness) NewAccount() model.Account {
	h.T.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		h.T.Fatalf("ledgertest: GenerateKey: %v", err)
	}
	var account model.Account
	copy(account[:], pub)
	h.keys[account] = priv
	return account
}

// Sign signs hash as account, which must have been returned by NewAccount
// (or be the harness's genesis account).
func (h *Harness) Sign(account model.Account, hash model.Hash) model.Signature {
	h.T.Helper()
	priv, ok := h.keys[account]
	if !ok {
		h.T.Fatalf("ledgertest: no private key registered for account %s", account)
	}
	var sig model.Signature
	copy(sig[:], ed25519.Sign(priv, hash[:]))
	return sig
}

// sealAndSign computes b's content hash, signs it as signer, stores the
// signature, and re-seals b's hash field — the Signature_ field is never
// part of the hash, so this order always leaves b.Hash() consistent.
func (h *Harness) sealAndSign(b model.Block, signer model.Account, setSig func(model.Signature)) model.Hash {
	hash := blockhashing.HashBlock(b)
	setSig(h.Sign(signer, hash))
	return blockhashing.Seal(b)
}

// NewSend builds, signs, and seals a legacy send block authored by account.
func (h *Harness) NewSend(account model.Account, previous model.Hash, destination model.Account, newBalance amount.Amount) *model.SendBlock {
	b := &model.SendBlock{Previous: previous, Destination: destination, Balance: newBalance}
	h.sealAndSign(b, account, func(s model.Signature) { b.Signature_ = s })
	return b
}

// NewReceive builds, signs, and seals a legacy receive block authored by
// account, claiming the pending entry created by source.
func (h *Harness) NewReceive(account model.Account, previous model.Hash, source model.Hash) *model.ReceiveBlock {
	b := &model.ReceiveBlock{Previous: previous, Source: source}
	h.sealAndSign(b, account, func(s model.Signature) { b.Signature_ = s })
	return b
}

// NewOpen builds, signs, and seals the first block of account's chain,
// claiming the pending entry created by source.
func (h *Harness) NewOpen(account model.Account, source model.Hash, representative model.Account) *model.OpenBlock {
	b := &model.OpenBlock{AccountField: account, Source: source, Representative: representative}
	h.sealAndSign(b, account, func(s model.Signature) { b.Signature_ = s })
	return b
}

// NewChange builds, signs, and seals a representative-change block authored
// by account.
func (h *Harness) NewChange(account model.Account, previous model.Hash, representative model.Account) *model.ChangeBlock {
	b := &model.ChangeBlock{Previous: previous, Representative: representative}
	h.sealAndSign(b, account, func(s model.Signature) { b.Signature_ = s })
	return b
}

// NewState builds, signs, and seals a state block authored by account.
func (h *Harness) NewState(account model.Account, previous model.Hash, representative model.Account, balance amount.Amount, link model.Hash) *model.StateBlock {
	b := &model.StateBlock{AccountField: account, Previous: previous, Representative: representative, Balance: balance, Link: link}
	h.sealAndSign(b, account, func(s model.Signature) { b.Signature_ = s })
	return b
}

// NewEpochBlock builds, signs (as the harness's configured epoch signer,
// not account), and seals an epoch-upgrade state block for account. balance
// must equal account's current balance (zero for a not-yet-opened account):
// an epoch block never moves funds.
func (h *Harness) NewEpochBlock(account model.Account, previous model.Hash, representative model.Account, balance amount.Amount) *model.StateBlock {
	b := &model.StateBlock{AccountField: account, Previous: previous, Representative: representative, Balance: balance, Link: h.Epoch1Link}
	h.sealAndSign(b, h.EpochSigner, func(s model.Signature) { b.Signature_ = s })
	return b
}

// Write runs fn inside a fresh write transaction, committing it if fn
// returns nil and failing the test otherwise.
func (h *Harness) Write(fn func(dbTx model.DBTransaction) error) {
	h.T.Helper()
	dbTx, err := h.DB.BeginWriteTx()
	if err != nil {
		h.T.Fatalf("ledgertest: BeginWriteTx: %v", err)
	}
	if err := fn(dbTx); err != nil {
		_ = dbTx.RollbackUnlessClosed()
		h.T.Fatalf("ledgertest: write transaction failed: %+v", err)
		return
	}
	if err := dbTx.Commit(); err != nil {
		h.T.Fatalf("ledgertest: Commit: %v", err)
	}
}

// Read runs fn inside a fresh read transaction, discarding it afterward.
func (h *Harness) Read(fn func(dbTx model.DBReadTransaction) error) {
	h.T.Helper()
	dbTx, err := h.DB.BeginReadTx()
	if err != nil {
		h.T.Fatalf("ledgertest: BeginReadTx: %v", err)
	}
	defer dbTx.Discard()
	if err := fn(dbTx); err != nil {
		h.T.Fatalf("ledgertest: read transaction failed: %+v", err)
	}
}

// Process runs block through the harness's Ledger inside its own committed
// write transaction and returns the result.
func (h *Harness) Process(block model.Block, verified model.VerificationState) model.ProcessResult {
	h.T.Helper()
	var result model.ProcessResult
	h.Write(func(dbTx model.DBTransaction) error {
		r, err := h.Ledger.Process(dbTx, block, verified)
		result = r
		return err
	})
	return result
}
