package accountstate_test

import (
	"testing"

	"github.com/blocklattice/ledgerd/domain/ledger/ledgertest"
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/processes/accountstate"
)

func TestLoadUnknownAccountIsZeroValue(t *testing.T) {
	h := ledgertest.New(t)
	unknown := h.NewAccount()

	h.Read(func(dbTx model.DBReadTransaction) error {
		state, err := accountstate.Load(dbTx, h.Accounts, h.Blocks, unknown)
		if err != nil {
			return err
		}
		if state.Exists() {
			t.Fatal("expected Exists() == false for an unopened account")
		}
		if !state.Head().IsZero() {
			t.Fatalf("Head() = %v, want zero", state.Head())
		}
		if !state.OpenBlock().IsZero() {
			t.Fatalf("OpenBlock() = %v, want zero", state.OpenBlock())
		}
		if state.Epoch() != model.Epoch0 {
			t.Fatalf("Epoch() = %v, want epoch_0", state.Epoch())
		}
		if state.BlockCount() != 0 {
			t.Fatalf("BlockCount() = %d, want 0", state.BlockCount())
		}
		if !state.Balance().IsZero() {
			t.Fatalf("Balance() = %s, want zero", state.Balance())
		}
		return nil
	})
}

func TestLoadOpenAccountReflectsHead(t *testing.T) {
	h := ledgertest.New(t)

	h.Read(func(dbTx model.DBReadTransaction) error {
		state, err := accountstate.Load(dbTx, h.Accounts, h.Blocks, h.GenesisAccount)
		if err != nil {
			return err
		}
		if !state.Exists() {
			t.Fatal("expected Exists() == true for the genesis account")
		}
		if state.Head() != h.GenesisHash {
			t.Fatalf("Head() = %v, want %v", state.Head(), h.GenesisHash)
		}
		if state.OpenBlock() != h.GenesisHash {
			t.Fatalf("OpenBlock() = %v, want %v", state.OpenBlock(), h.GenesisHash)
		}
		if state.Representative() != h.GenesisAccount {
			t.Fatalf("Representative() = %v, want %v", state.Representative(), h.GenesisAccount)
		}
		if state.BlockCount() != 1 {
			t.Fatalf("BlockCount() = %d, want 1", state.BlockCount())
		}
		if state.Balance().Cmp(ledgertest.GenesisAmount) != 0 {
			t.Fatalf("Balance() = %s, want %s", state.Balance(), ledgertest.GenesisAmount)
		}
		return nil
	})
}

// A state-block head surfaces its balance directly from the block rather
// than from the sideband, unlike a legacy head.
func TestBalanceFromStateBlockHead(t *testing.T) {
	h := ledgertest.New(t)

	repChange := h.NewAccount()
	change := h.NewState(h.GenesisAccount, h.GenesisHash, repChange, ledgertest.GenesisAmount, model.Hash{})
	if r := h.Process(change, model.VerificationUnknown); r.Code != model.Progress {
		t.Fatalf("state block result = %s, want progress", r.Code)
	}

	h.Read(func(dbTx model.DBReadTransaction) error {
		state, err := accountstate.Load(dbTx, h.Accounts, h.Blocks, h.GenesisAccount)
		if err != nil {
			return err
		}
		if state.Head() != change.Hash() {
			t.Fatalf("Head() = %v, want %v", state.Head(), change.Hash())
		}
		if state.Balance().Cmp(ledgertest.GenesisAmount) != 0 {
			t.Fatalf("Balance() = %s, want %s", state.Balance(), ledgertest.GenesisAmount)
		}
		if state.Representative() != repChange {
			t.Fatalf("Representative() = %v, want %v", state.Representative(), repChange)
		}
		return nil
	})
}
