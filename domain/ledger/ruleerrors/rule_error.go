package ruleerrors

import (
	"github.com/pkg/errors"
)

// These errors denote conditions that are never a legitimate outcome of
// processing an untrusted block: they indicate that the caller (or the
// store) violated one of the ledger's own operating invariants. They are
// distinct from model.ProcessCode, which classifies the (fully expected)
// outcomes of validating a block that came from the network.
var (
	// ErrRollbackBelowConfirmationHeight indicates an attempt to roll back
	// a block at or below an account's confirmation height. Confirmation
	// height is a hard floor; nothing below it may ever be rolled back.
	ErrRollbackBelowConfirmationHeight = newRuleError("ErrRollbackBelowConfirmationHeight")

	// ErrRollbackTargetNotFound indicates an attempt to roll back a block
	// hash that does not exist in the block store.
	ErrRollbackTargetNotFound = newRuleError("ErrRollbackTargetNotFound")

	// ErrUnknownBlockType indicates a block carries a BlockType the ledger
	// does not know how to validate, apply, or roll back.
	ErrUnknownBlockType = newRuleError("ErrUnknownBlockType")

	// ErrUnknownEpoch indicates an epoch value outside the range the running
	// ledger configuration knows about.
	ErrUnknownEpoch = newRuleError("ErrUnknownEpoch")

	// ErrCorruptSideband indicates a stored sideband could not be decoded,
	// or decoded into a value inconsistent with the block it accompanies.
	ErrCorruptSideband = newRuleError("ErrCorruptSideband")

	// ErrCorruptAccountInfo indicates that an account record the other
	// tables imply must exist (such as the owner of a block being rolled
	// back) is missing from the account store.
	ErrCorruptAccountInfo = newRuleError("ErrCorruptAccountInfo")

	// ErrCorruptPendingEntry indicates a stored pending entry could not be
	// decoded.
	ErrCorruptPendingEntry = newRuleError("ErrCorruptPendingEntry")

	// ErrGenesisAlreadyInitialized indicates an attempt to write the genesis
	// open block into a store that is already populated.
	ErrGenesisAlreadyInitialized = newRuleError("ErrGenesisAlreadyInitialized")

	// ErrRepWeightsUnderflow indicates a representative weight delta would
	// have driven a tracked weight negative, which would break the
	// invariant that tracked weights always sum to the total supply.
	ErrRepWeightsUnderflow = newRuleError("ErrRepWeightsUnderflow")
)

// RuleError identifies a violation of one of the ledger's own operating
// invariants, as opposed to a rejection of an individual untrusted block
// (see model.ProcessCode for those). The caller can use errors.As to
// recover the underlying RuleError and switch on its message.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface.
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface.
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// Wrap wraps inner in a copy of e, attaching a stack trace at the call site.
func (e RuleError) Wrap(inner error) error {
	return errors.WithStack(RuleError{message: e.message, inner: inner})
}
