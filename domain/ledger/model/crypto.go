package model

// Verifier is the set of cryptographic predicates the ledger core treats as
// opaque collaborators. Signature schemes, key formats, and the specific
// set of pinned epoch signers are entirely the caller's concern; the
// validator only ever calls through this interface.
type Verifier interface {
	// ValidateMessage reports whether signature is a valid signature by
	// account over hash.
	ValidateMessage(account Account, hash Hash, signature Signature) bool

	// Signer returns the pinned account that must sign an epoch-upgrade
	// block carrying the given link. Only meaningful when IsEpochLink(link)
	// is true.
	Signer(link Hash) Account

	// IsEpochLink reports whether link names one of the configured
	// epoch-upgrade link constants.
	IsEpochLink(link Hash) bool

	// Epoch returns which epoch a given epoch link upgrades an account to.
	// Only meaningful when IsEpochLink(link) is true.
	Epoch(link Hash) Epoch

	// Link returns the configured epoch-upgrade link constant for epoch.
	// Used only when constructing a new epoch-upgrade block, never by the
	// validator or rollbacker. Implementations inherited from this
	// ledger's origin always return the epoch_1 link regardless of epoch;
	// see the Verifier implementation for why that is preserved rather
	// than fixed.
	Link(epoch Epoch) Hash
}
