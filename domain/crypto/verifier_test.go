package crypto

import (
	"crypto/ed25519"
	"testing"

	"github.com/blocklattice/ledgerd/domain/ledger/model"
)

func mustHash(b byte) model.Hash {
	var h model.Hash
	h[0] = b
	return h
}

func TestValidateMessage(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	var account model.Account
	copy(account[:], pub)

	hash := mustHash(1)
	sig := ed25519.Sign(priv, hash[:])
	var signature model.Signature
	copy(signature[:], sig)

	v := New(nil)
	if !v.ValidateMessage(account, hash, signature) {
		t.Fatal("expected valid signature to verify")
	}

	signature[0] ^= 0xff
	if v.ValidateMessage(account, hash, signature) {
		t.Fatal("expected tampered signature to fail verification")
	}
}

func TestLinkAlwaysReturnsEpoch1(t *testing.T) {
	epoch1Link := mustHash(0xe1)
	epoch2Link := mustHash(0xe2)
	signer := mustHash(0xaa)

	v := New([]EpochLink{
		{Link: epoch1Link, Epoch: model.Epoch1, Signer: signer},
		{Link: epoch2Link, Epoch: model.Epoch2, Signer: signer},
	})

	if got := v.Link(model.Epoch1); got != epoch1Link {
		t.Fatalf("Link(epoch_1) = %v, want %v", got, epoch1Link)
	}
	if got := v.Link(model.Epoch2); got != epoch1Link {
		t.Fatalf("Link(epoch_2) = %v, want %v (epoch_1's link, regardless of argument)", got, epoch1Link)
	}
	if got := v.Link(model.Epoch0); got != epoch1Link {
		t.Fatalf("Link(epoch_0) = %v, want %v (epoch_1's link, regardless of argument)", got, epoch1Link)
	}
}

func TestIsEpochLinkAndSigner(t *testing.T) {
	link := mustHash(0xe1)
	signer := mustHash(0xaa)
	v := New([]EpochLink{{Link: link, Epoch: model.Epoch1, Signer: signer}})

	if !v.IsEpochLink(link) {
		t.Fatal("expected configured link to be recognized")
	}
	if v.IsEpochLink(mustHash(0x99)) {
		t.Fatal("expected unconfigured hash to not be an epoch link")
	}
	if got := v.Signer(link); got != signer {
		t.Fatalf("Signer = %v, want %v", got, signer)
	}
	if got := v.Epoch(link); got != model.Epoch1 {
		t.Fatalf("Epoch = %v, want epoch_1", got)
	}
}
