package repweights

import (
	"testing"

	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/utils/amount"
)

func account(b byte) model.Account {
	var a model.Account
	a[0] = b
	return a
}

func TestAddAndGet(t *testing.T) {
	c := New()
	rep := account(1)

	if got := c.Get(rep); !got.IsZero() {
		t.Fatalf("Get on unseen representative = %s, want zero", got)
	}

	c.Add(rep, amount.FromUint64(100), false)
	if got := c.Get(rep); got.Cmp(amount.FromUint64(100)) != 0 {
		t.Fatalf("Get after Add = %s, want 100", got)
	}

	c.Add(rep, amount.FromUint64(40), true)
	if got := c.Get(rep); got.Cmp(amount.FromUint64(60)) != 0 {
		t.Fatalf("Get after negative Add = %s, want 60", got)
	}
}

func TestAddZeroDeltaIsNoop(t *testing.T) {
	c := New()
	rep := account(2)

	c.Add(rep, amount.Zero, false)
	if got := c.Get(rep); !got.IsZero() {
		t.Fatalf("Get after zero-delta Add = %s, want zero", got)
	}
	if total := c.Total(); !total.IsZero() {
		t.Fatalf("Total after only zero-delta Adds = %s, want zero", total)
	}
}

func TestTotalSumsAllRepresentatives(t *testing.T) {
	c := New()
	repA, repB := account(1), account(2)

	c.Add(repA, amount.FromUint64(30), false)
	c.Add(repB, amount.FromUint64(70), false)

	if total := c.Total(); total.Cmp(amount.FromUint64(100)) != 0 {
		t.Fatalf("Total = %s, want 100", total)
	}

	c.Add(repA, amount.FromUint64(30), true)
	if total := c.Total(); total.Cmp(amount.FromUint64(70)) != 0 {
		t.Fatalf("Total after draining repA = %s, want 70", total)
	}
}
