package blockhashing

import (
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/utils/hashes"
)

// HashBlock returns the content hash of b, folding its fields into a
// blake2b-256 digest in each variant's canonical field order. The block's
// signature and any store-side sideband are never part of this hash.
func HashBlock(b model.Block) model.Hash {
	switch blk := b.(type) {
	case *model.SendBlock:
		return hashSend(blk)
	case *model.ReceiveBlock:
		return hashReceive(blk)
	case *model.OpenBlock:
		return hashOpen(blk)
	case *model.ChangeBlock:
		return hashChange(blk)
	case *model.StateBlock:
		return hashState(blk)
	default:
		panic("blockhashing: unknown block variant")
	}
}

func hashSend(b *model.SendBlock) model.Hash {
	w := hashes.NewHashWriter()
	w.InfallibleWrite(b.Previous[:])
	w.InfallibleWrite(b.Destination[:])
	w.InfallibleWrite(b.Balance.Bytes())
	return w.Finalize()
}

func hashReceive(b *model.ReceiveBlock) model.Hash {
	w := hashes.NewHashWriter()
	w.InfallibleWrite(b.Previous[:])
	w.InfallibleWrite(b.Source[:])
	return w.Finalize()
}

func hashOpen(b *model.OpenBlock) model.Hash {
	w := hashes.NewHashWriter()
	w.InfallibleWrite(b.Source[:])
	w.InfallibleWrite(b.Representative[:])
	w.InfallibleWrite(b.AccountField[:])
	return w.Finalize()
}

func hashChange(b *model.ChangeBlock) model.Hash {
	w := hashes.NewHashWriter()
	w.InfallibleWrite(b.Previous[:])
	w.InfallibleWrite(b.Representative[:])
	return w.Finalize()
}

func hashState(b *model.StateBlock) model.Hash {
	w := hashes.NewHashWriter()
	// A fixed preamble domain-separates state blocks from a coincidental
	// collision with the legacy variants, which all hash strictly fewer /
	// differently-ordered fields.
	var preamble [32]byte
	preamble[31] = 0x6
	w.InfallibleWrite(preamble[:])
	w.InfallibleWrite(b.AccountField[:])
	w.InfallibleWrite(b.Previous[:])
	w.InfallibleWrite(b.Representative[:])
	w.InfallibleWrite(b.Balance.Bytes())
	w.InfallibleWrite(b.Link[:])
	return w.Finalize()
}

// Seal computes b's hash and stores it on the block, then returns it. Every
// constructor that produces a new outgoing block (as opposed to one just
// decoded from the store, which already carries its hash) must call Seal
// before the block is handed to the validator.
func Seal(b model.Block) model.Hash {
	h := HashBlock(b)
	type hashSetter interface {
		SetHash(model.Hash)
	}
	b.(hashSetter).SetHash(h)
	return h
}
