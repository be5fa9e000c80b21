package ledger_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/blocklattice/ledgerd/domain/ledger"
	"github.com/blocklattice/ledgerd/domain/ledger/ledgertest"
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/processes/repweights"
	"github.com/blocklattice/ledgerd/domain/ledger/utils/amount"
)

// S1: genesis account balance and representative weight match what the
// harness seeded.
func TestGenesisOpen(t *testing.T) {
	h := ledgertest.New(t)

	h.Read(func(dbTx model.DBReadTransaction) error {
		balance, err := h.Ledger.AccountBalance(dbTx, h.GenesisAccount)
		if err != nil {
			return err
		}
		if balance.Cmp(ledgertest.GenesisAmount) != 0 {
			t.Fatalf("genesis balance = %s, want %s", balance, ledgertest.GenesisAmount)
		}
		weight, err := h.Ledger.Weight(dbTx, h.GenesisAccount)
		if err != nil {
			return err
		}
		if weight.Cmp(ledgertest.GenesisAmount) != 0 {
			t.Fatalf("genesis weight = %s, want %s", weight, ledgertest.GenesisAmount)
		}
		return nil
	})
}

// S2: send from genesis to a fresh account, then open that account with
// the send as its source.
func TestSendThenOpenRoundTrip(t *testing.T) {
	h := ledgertest.New(t)
	a := h.NewAccount()

	sendAmount := amount.FromUint64(100)
	remaining := ledgertest.GenesisAmount.Sub(sendAmount)
	send := h.NewSend(h.GenesisAccount, h.GenesisHash, a, remaining)

	result := h.Process(send, model.VerificationUnknown)
	if result.Code != model.Progress {
		t.Fatalf("send result = %s, want progress", result.Code)
	}

	h.Read(func(dbTx model.DBReadTransaction) error {
		pending, err := h.Ledger.AccountPending(dbTx, a)
		if err != nil {
			return err
		}
		if pending.Cmp(sendAmount) != 0 {
			t.Fatalf("pending for new account = %s, want %s", pending, sendAmount)
		}
		return nil
	})

	open := h.NewOpen(a, send.Hash(), a)
	openResult := h.Process(open, model.VerificationUnknown)
	if openResult.Code != model.Progress {
		t.Fatalf("open result = %s, want progress", openResult.Code)
	}

	h.Read(func(dbTx model.DBReadTransaction) error {
		balanceA, err := h.Ledger.AccountBalance(dbTx, a)
		if err != nil {
			return err
		}
		if balanceA.Cmp(sendAmount) != 0 {
			t.Fatalf("balance(a) = %s, want %s", balanceA, sendAmount)
		}
		balanceGenesis, err := h.Ledger.AccountBalance(dbTx, h.GenesisAccount)
		if err != nil {
			return err
		}
		if balanceGenesis.Cmp(remaining) != 0 {
			t.Fatalf("balance(genesis) = %s, want %s", balanceGenesis, remaining)
		}
		total := h.RepWeights.Total()
		if total.Cmp(ledgertest.GenesisAmount) != 0 {
			t.Fatalf("sum of rep weights = %s, want %s", total, ledgertest.GenesisAmount)
		}
		pending, err := h.Ledger.AccountPending(dbTx, a)
		if err != nil {
			return err
		}
		if !pending.IsZero() {
			t.Fatalf("pending for a after open = %s, want zero", pending)
		}
		return nil
	})
}

// S3: re-submitting an already-applied open returns old; a second open for
// the same account returns fork; receiving an unknown send returns
// gap_source.
func TestDuplicateAndForkingOpens(t *testing.T) {
	h := ledgertest.New(t)
	a := h.NewAccount()

	sendAmount := amount.FromUint64(50)
	send := h.NewSend(h.GenesisAccount, h.GenesisHash, a, ledgertest.GenesisAmount.Sub(sendAmount))
	if r := h.Process(send, model.VerificationUnknown); r.Code != model.Progress {
		t.Fatalf("send result = %s, want progress", r.Code)
	}

	open := h.NewOpen(a, send.Hash(), a)
	if r := h.Process(open, model.VerificationUnknown); r.Code != model.Progress {
		t.Fatalf("open result = %s, want progress", r.Code)
	}

	if r := h.Process(open, model.VerificationUnknown); r.Code != model.Old {
		t.Fatalf("re-processing open = %s, want old", r.Code)
	}

	secondSend := h.NewSend(h.GenesisAccount, send.Hash(), a, ledgertest.GenesisAmount.Sub(sendAmount).Sub(amount.FromUint64(1)))
	if r := h.Process(secondSend, model.VerificationUnknown); r.Code != model.Progress {
		t.Fatalf("second send result = %s, want progress", r.Code)
	}
	secondOpen := h.NewOpen(a, secondSend.Hash(), a)
	if r := h.Process(secondOpen, model.VerificationUnknown); r.Code != model.Fork {
		t.Fatalf("second open for already-open account = %s, want fork", r.Code)
	}

	unknownSourceReceive := h.NewReceive(a, open.Hash(), model.Hash{0xff})
	if r := h.Process(unknownSourceReceive, model.VerificationUnknown); r.Code != model.GapSource {
		t.Fatalf("receive of unknown source = %s, want gap_source", r.Code)
	}
}

// S4: rolling back an account's open block empties it and restores the
// consumed pending entry and sender's weight; rolling back the send that
// funded it restores the sender to its pre-send balance.
func TestRollbackChain(t *testing.T) {
	h := ledgertest.New(t)
	a := h.NewAccount()

	sendAmount := amount.FromUint64(100)
	remaining := ledgertest.GenesisAmount.Sub(sendAmount)
	send := h.NewSend(h.GenesisAccount, h.GenesisHash, a, remaining)
	if r := h.Process(send, model.VerificationUnknown); r.Code != model.Progress {
		t.Fatalf("send result = %s, want progress", r.Code)
	}
	open := h.NewOpen(a, send.Hash(), a)
	if r := h.Process(open, model.VerificationUnknown); r.Code != model.Progress {
		t.Fatalf("open result = %s, want progress", r.Code)
	}

	h.Write(func(dbTx model.DBTransaction) error {
		var out []model.Block
		return h.Ledger.Rollback(dbTx, open.Hash(), &out)
	})

	h.Read(func(dbTx model.DBReadTransaction) error {
		balanceA, err := h.Ledger.AccountBalance(dbTx, a)
		if err != nil {
			return err
		}
		if !balanceA.IsZero() {
			t.Fatalf("balance(a) after rolling back open = %s, want zero", balanceA)
		}
		pending, err := h.Ledger.AccountPending(dbTx, a)
		if err != nil {
			return err
		}
		if pending.Cmp(sendAmount) != 0 {
			t.Fatalf("pending after rolling back open = %s, want %s", pending, sendAmount)
		}
		return nil
	})

	h.Write(func(dbTx model.DBTransaction) error {
		var out []model.Block
		return h.Ledger.Rollback(dbTx, send.Hash(), &out)
	})

	h.Read(func(dbTx model.DBReadTransaction) error {
		balanceGenesis, err := h.Ledger.AccountBalance(dbTx, h.GenesisAccount)
		if err != nil {
			return err
		}
		if balanceGenesis.Cmp(ledgertest.GenesisAmount) != 0 {
			t.Fatalf("balance(genesis) after rolling back send = %s, want %s", balanceGenesis, ledgertest.GenesisAmount)
		}
		weight := h.RepWeights.Get(h.GenesisAccount)
		if weight.Cmp(ledgertest.GenesisAmount) != 0 {
			t.Fatalf("genesis weight after rollback = %s, want %s", weight, ledgertest.GenesisAmount)
		}
		return nil
	})
}

// S5: a state-block send/open round trip reports StateIsSend correctly on
// each side.
func TestStateSendReceiveRoundTrip(t *testing.T) {
	h := ledgertest.New(t)
	b := h.NewAccount()

	sendAmount := amount.FromUint64(50)
	remaining := ledgertest.GenesisAmount.Sub(sendAmount)
	send := h.NewState(h.GenesisAccount, h.GenesisHash, h.GenesisAccount, remaining, b)
	sendResult := h.Process(send, model.VerificationUnknown)
	if sendResult.Code != model.Progress {
		t.Fatalf("state send result = %s, want progress", sendResult.Code)
	}
	if !sendResult.StateIsSend {
		t.Fatal("expected StateIsSend on the sending state block")
	}

	open := h.NewState(b, model.Hash{}, b, sendAmount, send.Hash())
	openResult := h.Process(open, model.VerificationUnknown)
	if openResult.Code != model.Progress {
		t.Fatalf("state open result = %s, want progress", openResult.Code)
	}
	if openResult.StateIsSend {
		t.Fatal("expected StateIsSend == false on the receiving state block")
	}

	h.Read(func(dbTx model.DBReadTransaction) error {
		balanceB, err := h.Ledger.AccountBalance(dbTx, b)
		if err != nil {
			return err
		}
		if balanceB.Cmp(sendAmount) != 0 {
			t.Fatalf("balance(b) = %s, want %s", balanceB, sendAmount)
		}
		return nil
	})
}

// S7: a send whose stated new balance exceeds the current balance is
// rejected as negative_spend.
func TestNegativeSpend(t *testing.T) {
	h := ledgertest.New(t)
	a := h.NewAccount()

	tooMuch := ledgertest.GenesisAmount.Add(amount.FromUint64(1))
	send := h.NewSend(h.GenesisAccount, h.GenesisHash, a, tooMuch)
	if r := h.Process(send, model.VerificationUnknown); r.Code != model.NegativeSpend {
		t.Fatalf("send result = %s, want negative_spend", r.Code)
	}
}

// S8: two change blocks sharing the same previous are a fork: the first
// applies, the second is rejected.
func TestForkOnChange(t *testing.T) {
	h := ledgertest.New(t)
	repA := h.NewAccount()
	repB := h.NewAccount()

	change1 := h.NewChange(h.GenesisAccount, h.GenesisHash, repA)
	if r := h.Process(change1, model.VerificationUnknown); r.Code != model.Progress {
		t.Fatalf("first change result = %s, want progress", r.Code)
	}

	change2 := h.NewChange(h.GenesisAccount, h.GenesisHash, repB)
	if r := h.Process(change2, model.VerificationUnknown); r.Code != model.Fork {
		t.Fatalf("second change result = %s, want fork", r.Code)
	}
}

// Bad signatures are rejected regardless of block variant.
func TestBadSignatureRejected(t *testing.T) {
	h := ledgertest.New(t)
	a := h.NewAccount()

	send := h.NewSend(h.GenesisAccount, h.GenesisHash, a, ledgertest.GenesisAmount.Sub(amount.FromUint64(1)))
	send.Signature_[0] ^= 0xff
	// Corrupting the signature does not change the hash (signatures are not
	// hashed), so the block can still be looked up by its original hash.
	if r := h.Process(send, model.VerificationUnknown); r.Code != model.BadSignature {
		t.Fatalf("tampered send result = %s, want bad_signature", r.Code)
	}
}

// Property: after any accepted send/open pair, total balance across every
// touched account equals the genesis amount, and the representative weight
// cache always sums to the same total.
func TestConservationOfSupply(t *testing.T) {
	h := ledgertest.New(t)
	a := h.NewAccount()
	b := h.NewAccount()

	amt1 := amount.FromUint64(300)
	send1 := h.NewSend(h.GenesisAccount, h.GenesisHash, a, ledgertest.GenesisAmount.Sub(amt1))
	if r := h.Process(send1, model.VerificationUnknown); r.Code != model.Progress {
		t.Fatalf("send1 = %s, want progress", r.Code)
	}
	open1 := h.NewOpen(a, send1.Hash(), a)
	if r := h.Process(open1, model.VerificationUnknown); r.Code != model.Progress {
		t.Fatalf("open1 = %s, want progress", r.Code)
	}

	amt2 := amount.FromUint64(120)
	send2 := h.NewSend(a, open1.Hash(), b, amt1.Sub(amt2))
	if r := h.Process(send2, model.VerificationUnknown); r.Code != model.Progress {
		t.Fatalf("send2 = %s, want progress", r.Code)
	}
	open2 := h.NewOpen(b, send2.Hash(), b)
	if r := h.Process(open2, model.VerificationUnknown); r.Code != model.Progress {
		t.Fatalf("open2 = %s, want progress", r.Code)
	}

	h.Read(func(dbTx model.DBReadTransaction) error {
		balGenesis, err := h.Ledger.AccountBalance(dbTx, h.GenesisAccount)
		if err != nil {
			return err
		}
		balA, err := h.Ledger.AccountBalance(dbTx, a)
		if err != nil {
			return err
		}
		balB, err := h.Ledger.AccountBalance(dbTx, b)
		if err != nil {
			return err
		}
		total := balGenesis.Add(balA).Add(balB)
		if total.Cmp(ledgertest.GenesisAmount) != 0 {
			t.Fatalf("sum of balances = %s, want %s", total, ledgertest.GenesisAmount)
		}
		weightTotal := h.RepWeights.Total()
		if weightTotal.Cmp(ledgertest.GenesisAmount) != 0 {
			t.Fatalf("sum of rep weights = %s, want %s", weightTotal, ledgertest.GenesisAmount)
		}
		return nil
	})
}

// Property: CouldFit is false whenever a referenced block is missing, and
// Process on the same block never returns progress in that situation.
func TestCouldFitAgreesWithGapCodes(t *testing.T) {
	h := ledgertest.New(t)
	a := h.NewAccount()

	send := h.NewSend(h.GenesisAccount, model.Hash{0xaa}, a, amount.FromUint64(1))

	var fits bool
	h.Read(func(dbTx model.DBReadTransaction) error {
		var err error
		fits, err = h.Ledger.CouldFit(dbTx, send)
		return err
	})
	if fits {
		t.Fatal("expected CouldFit == false for a send referencing a nonexistent previous")
	}

	if r := h.Process(send, model.VerificationUnknown); r.Code != model.GapPrevious {
		t.Fatalf("process result = %s, want gap_previous", r.Code)
	}
}

// Property: process-then-rollback restores the account to its prior
// balance, open block, and representative.
func TestProcessThenRollbackIsIdentity(t *testing.T) {
	h := ledgertest.New(t)
	rep := h.NewAccount()

	var beforeInfo model.AccountInfo
	h.Read(func(dbTx model.DBReadTransaction) error {
		info, _, err := accountInfoOrZero(dbTx, h)
		beforeInfo = info
		return err
	})

	change := h.NewChange(h.GenesisAccount, h.GenesisHash, rep)
	if r := h.Process(change, model.VerificationUnknown); r.Code != model.Progress {
		t.Fatalf("change result = %s, want progress", r.Code)
	}

	h.Write(func(dbTx model.DBTransaction) error {
		var out []model.Block
		return h.Ledger.Rollback(dbTx, change.Hash(), &out)
	})

	h.Read(func(dbTx model.DBReadTransaction) error {
		afterInfo, found, err := accountInfoOrZero(dbTx, h)
		if err != nil {
			return err
		}
		if !found {
			t.Fatal("expected genesis account to still exist after rollback")
		}
		if afterInfo != beforeInfo {
			t.Fatalf("account info after rollback, got:\n%swant:\n%s", spew.Sdump(afterInfo), spew.Sdump(beforeInfo))
		}
		weight := h.RepWeights.Get(h.GenesisAccount)
		if weight.Cmp(ledgertest.GenesisAmount) != 0 {
			t.Fatalf("genesis weight after rollback = %s, want %s", weight, ledgertest.GenesisAmount)
		}
		return nil
	})
}

// Warm rebuilds RepWeights and CementedCount from the store, independent of
// whatever in-memory cache the caller already had.
func TestWarmRebuildsCachesFromStore(t *testing.T) {
	h := ledgertest.New(t)
	a := h.NewAccount()

	sendAmount := amount.FromUint64(40)
	send := h.NewSend(h.GenesisAccount, h.GenesisHash, a, ledgertest.GenesisAmount.Sub(sendAmount))
	if r := h.Process(send, model.VerificationUnknown); r.Code != model.Progress {
		t.Fatalf("send result = %s, want progress", r.Code)
	}
	open := h.NewOpen(a, send.Hash(), a)
	if r := h.Process(open, model.VerificationUnknown); r.Code != model.Progress {
		t.Fatalf("open result = %s, want progress", r.Code)
	}

	cold := repweights.New()
	params := h.Params
	params.CacheReps = true
	params.CacheCementedCount = true
	warmed := ledger.New(h.Blocks, h.Accounts, h.Pending, h.Frontiers, h.Confirmations, cold, h.Verifier, params)

	h.Read(func(dbTx model.DBReadTransaction) error {
		return warmed.Warm(dbTx)
	})

	if total := cold.Total(); total.Cmp(ledgertest.GenesisAmount) != 0 {
		t.Fatalf("warmed rep weight total = %s, want %s", total, ledgertest.GenesisAmount)
	}
	if got := cold.Get(a); got.Cmp(sendAmount) != 0 {
		t.Fatalf("warmed weight of a's representative = %s, want %s", got, sendAmount)
	}
	// The harness seeds the genesis account's confirmation height at 1; no
	// other account in this test ever had one recorded.
	if got := warmed.CementedCount(); got != 1 {
		t.Fatalf("CementedCount = %d, want 1", got)
	}
}

// Successor must name the actual next block on the chain once one exists,
// and ForkedBlock must surface it as the occupant of a slot a conflicting
// block tries to reuse.
func TestSuccessorAndForkedBlock(t *testing.T) {
	h := ledgertest.New(t)
	a := h.NewAccount()

	send1 := h.NewSend(h.GenesisAccount, h.GenesisHash, a, ledgertest.GenesisAmount.Sub(amount.FromUint64(100)))
	if r := h.Process(send1, model.VerificationUnknown); r.Code != model.Progress {
		t.Fatalf("send1 result = %s, want progress", r.Code)
	}
	send2 := h.NewSend(h.GenesisAccount, send1.Hash(), a, ledgertest.GenesisAmount.Sub(amount.FromUint64(200)))
	if r := h.Process(send2, model.VerificationUnknown); r.Code != model.Progress {
		t.Fatalf("send2 result = %s, want progress", r.Code)
	}

	h.Read(func(dbTx model.DBReadTransaction) error {
		successor, err := h.Ledger.Successor(dbTx, h.GenesisHash, h.GenesisAccount)
		if err != nil {
			return err
		}
		if successor == nil || successor.Hash() != send1.Hash() {
			t.Fatalf("successor of genesis open = %v, want send1 (%s)", successor, send1.Hash())
		}
		successor, err = h.Ledger.Successor(dbTx, send1.Hash(), h.GenesisAccount)
		if err != nil {
			return err
		}
		if successor == nil || successor.Hash() != send2.Hash() {
			t.Fatalf("successor of send1 = %v, want send2 (%s)", successor, send2.Hash())
		}

		fork := h.NewSend(h.GenesisAccount, send1.Hash(), a, ledgertest.GenesisAmount.Sub(amount.FromUint64(300)))
		existing, err := h.Ledger.ForkedBlock(dbTx, fork)
		if err != nil {
			return err
		}
		if existing == nil || existing.Hash() != send2.Hash() {
			t.Fatalf("forked block contending with send1's slot = %v, want send2 (%s)", existing, send2.Hash())
		}
		return nil
	})
}

func accountInfoOrZero(dbTx model.DBReader, h *ledgertest.Harness) (model.AccountInfo, bool, error) {
	return h.Accounts.Get(dbTx, h.GenesisAccount)
}

// S6: upgrading an account to epoch_1 makes its pending sends epoch_1 too, a
// legacy open then refuses to receive them, but a state-block open accepts
// one without trouble.
func TestEpochUpgradeGatesLegacyReceive(t *testing.T) {
	h := ledgertest.NewWithEpochLink(t)

	epochBlock := h.NewEpochBlock(h.GenesisAccount, h.GenesisHash, h.GenesisAccount, ledgertest.GenesisAmount)
	if r := h.Process(epochBlock, model.VerificationUnknown); r.Code != model.Progress {
		t.Fatalf("epoch upgrade result = %s, want progress", r.Code)
	}

	sendAmount := amount.FromUint64(75)
	remaining := ledgertest.GenesisAmount.Sub(sendAmount)
	fresh := h.NewAccount()
	send := h.NewState(h.GenesisAccount, epochBlock.Hash(), h.GenesisAccount, remaining, fresh)
	sendResult := h.Process(send, model.VerificationUnknown)
	if sendResult.Code != model.Progress {
		t.Fatalf("state send after epoch upgrade = %s, want progress", sendResult.Code)
	}
	if !sendResult.StateIsSend {
		t.Fatal("expected StateIsSend on the post-upgrade send")
	}

	legacyOpen := h.NewOpen(fresh, send.Hash(), fresh)
	if r := h.Process(legacyOpen, model.VerificationUnknown); r.Code != model.Unreceivable {
		t.Fatalf("legacy open of an epoch_1 pending entry = %s, want unreceivable", r.Code)
	}

	stateOpen := h.NewState(fresh, model.Hash{}, fresh, sendAmount, send.Hash())
	openResult := h.Process(stateOpen, model.VerificationUnknown)
	if openResult.Code != model.Progress {
		t.Fatalf("state open of an epoch_1 pending entry = %s, want progress", openResult.Code)
	}

	h.Read(func(dbTx model.DBReadTransaction) error {
		balance, err := h.Ledger.AccountBalance(dbTx, fresh)
		if err != nil {
			return err
		}
		if balance.Cmp(sendAmount) != 0 {
			t.Fatalf("balance(fresh) = %s, want %s", balance, sendAmount)
		}
		return nil
	})
}
