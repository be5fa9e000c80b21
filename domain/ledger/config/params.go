package config

import (
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/utils/amount"
)

// Params bundles the ledger's static configuration: everything about the
// running network that the validator and facade need but that neither the
// store nor the crypto verifier can tell them.
type Params struct {
	// GenesisAccount is the account that owns the network's genesis open
	// block.
	GenesisAccount model.Account
	// GenesisAmount is the balance the genesis open block starts with.
	GenesisAmount amount.Amount
	// GenesisHash is the hash of the genesis open block; amount() falls
	// back to GenesisAmount when asked about it, since it has no
	// previous block to diff against.
	GenesisHash model.Hash

	// BurnAccount may never be opened or credited; it exists so accidental
	// sends to the all-zero account are provably unspendable rather than
	// silently vanishing into an account someone could later claim.
	BurnAccount model.Account

	// CacheReps, if true, has Ledger.Warm rebuild RepWeights by scanning
	// every account instead of leaving it empty until blocks are replayed.
	CacheReps bool
	// CacheCementedCount, if true, has Ledger.Warm sum every account's
	// confirmation height into Ledger.CementedCount.
	CacheCementedCount bool

	// BootstrapWeights is a static table of representative weights used as
	// a fallback while the chain is still syncing and RepWeights has not
	// yet observed enough blocks to be trustworthy.
	BootstrapWeights map[model.Account]amount.Amount
	// BootstrapWeightMaxBlocks is the block-count cutoff below which
	// BootstrapWeights is consulted in preference to the live RepWeights
	// cache.
	BootstrapWeightMaxBlocks uint64
}
