package model

import "github.com/blocklattice/ledgerd/domain/ledger/utils/amount"

// ProcessCode classifies the outcome of validating a single block. It is
// the sole typed error channel process() exposes: harmless/retryable codes
// mean the block may become admissible later, unambiguous rejections mean
// it never will, and fork is ambiguous and resolved externally.
type ProcessCode uint8

const (
	// Progress: the block was valid and has been applied.
	Progress ProcessCode = iota
	// Old: the block already exists in the store.
	Old
	// GapPrevious: the block's previous field names a block that doesn't exist yet.
	GapPrevious
	// GapSource: the block's source/link field names a send that doesn't exist yet.
	GapSource
	// BadSignature: signature verification against the expected signer failed.
	BadSignature
	// NegativeSpend: a send's stated new balance exceeds the account's current balance.
	NegativeSpend
	// Fork: the block contends with an existing accepted block at the same chain slot.
	Fork
	// Unreceivable: the referenced pending entry does not exist, or its epoch is inadmissible for this receive variant.
	Unreceivable
	// BalanceMismatch: a state block's balance delta is inconsistent with the pending entry or with a claimed no-op.
	BalanceMismatch
	// RepresentativeMismatch: an epoch block changed the representative, which epoch blocks may never do.
	RepresentativeMismatch
	// BlockPosition: the block's previous head is not a legal predecessor for this variant.
	BlockPosition
	// OpenedBurnAccount: an attempt to open or credit the all-zero burn account.
	OpenedBurnAccount
)

func (c ProcessCode) String() string {
	switch c {
	case Progress:
		return "progress"
	case Old:
		return "old"
	case GapPrevious:
		return "gap_previous"
	case GapSource:
		return "gap_source"
	case BadSignature:
		return "bad_signature"
	case NegativeSpend:
		return "negative_spend"
	case Fork:
		return "fork"
	case Unreceivable:
		return "unreceivable"
	case BalanceMismatch:
		return "balance_mismatch"
	case RepresentativeMismatch:
		return "representative_mismatch"
	case BlockPosition:
		return "block_position"
	case OpenedBurnAccount:
		return "opened_burn_account"
	default:
		return "unknown"
	}
}

// IsRetryable reports whether the block may become admissible once more of
// the chain arrives, as opposed to being rejected outright.
func (c ProcessCode) IsRetryable() bool {
	switch c {
	case Old, GapPrevious, GapSource:
		return true
	default:
		return false
	}
}

// VerificationState communicates, in both directions, whether a block's
// signature has already been checked. Callers holding an out-of-band proof
// (e.g. it arrived inside an already-confirmed voting bundle) pass Valid to
// skip a redundant check; the validator reports back what it decided so
// callers processing a batch don't recompute it.
type VerificationState uint8

const (
	VerificationUnknown VerificationState = iota
	VerificationValid
	VerificationValidEpoch
	VerificationInvalid
)

// ProcessResult is returned by every call to process(). Fields beyond Code
// are meaningful only for particular codes / variants, matching the source
// this ledger is modeled on: Account and Amount are always filled in on
// Progress, PendingAccount only on Progress of a legacy send (where it is
// the send's destination), and StateIsSend only for state blocks.
type ProcessResult struct {
	Code           ProcessCode
	Verified       VerificationState
	Account        Account
	Amount         amount.Amount
	PendingAccount Account
	StateIsSend    bool
}
