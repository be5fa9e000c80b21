// Package crypto supplies the concrete implementation of model.Verifier the
// ledger core treats as an opaque collaborator: ed25519 signature checking
// and a static table of epoch-upgrade links and their pinned signers.
package crypto

import (
	"crypto/ed25519"

	"github.com/blocklattice/ledgerd/domain/ledger/model"
)

// EpochLink pins one epoch-upgrade link to the epoch it upgrades an account
// to and the account that alone may sign a block carrying it.
type EpochLink struct {
	Link   model.Hash
	Epoch  model.Epoch
	Signer model.Account
}

// Verifier is an ed25519-backed model.Verifier over a static set of epoch
// links, matching how an account chain network pins a small, fixed number
// of epoch-upgrade signers at genesis rather than rotating them.
type Verifier struct {
	linksByHash map[model.Hash]EpochLink
	epoch1Link  model.Hash
}

// New returns a Verifier configured with the given epoch links.
func New(links []EpochLink) *Verifier {
	v := &Verifier{linksByHash: make(map[model.Hash]EpochLink, len(links))}
	for _, l := range links {
		v.linksByHash[l.Link] = l
		if l.Epoch == model.Epoch1 {
			v.epoch1Link = l.Link
		}
	}
	return v
}

// ValidateMessage reports whether signature is a valid ed25519 signature by
// account over hash.
func (v *Verifier) ValidateMessage(account model.Account, hash model.Hash, signature model.Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(account[:]), hash[:], signature[:])
}

// Signer returns the account pinned to sign an epoch-upgrade block carrying
// link. As in the source this is modeled on, every configured link
// currently resolves to the same epoch_1 signer; the per-link lookup is
// kept so a future additional epoch can pin a distinct signer without
// changing this method's contract.
func (v *Verifier) Signer(link model.Hash) model.Account {
	if l, ok := v.linksByHash[link]; ok {
		return l.Signer
	}
	return model.Account{}
}

// IsEpochLink reports whether link names one of the configured
// epoch-upgrade link constants.
func (v *Verifier) IsEpochLink(link model.Hash) bool {
	_, ok := v.linksByHash[link]
	return ok
}

// Epoch returns which epoch link upgrades an account to.
func (v *Verifier) Epoch(link model.Hash) model.Epoch {
	if l, ok := v.linksByHash[link]; ok {
		return l.Epoch
	}
	return model.EpochInvalid
}

// Link returns the configured link for epoch_1 regardless of the requested
// epoch. This is not a simplification introduced here: the source this
// ledger is modeled on does the same, unconditionally returning the
// epoch_1 link no matter what epoch was asked for. With only one
// upgradeable epoch ever defined, the parameter has never had an
// observable effect, so this is preserved as-is rather than "fixed" into
// a real lookup table.
func (v *Verifier) Link(epoch model.Epoch) model.Hash {
	return v.epoch1Link
}
