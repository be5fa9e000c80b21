package blockcodec

import (
	"encoding/binary"

	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/utils/amount"
	"github.com/pkg/errors"
)

// EncodeBlock serializes a block's variant-specific fields, prefixed by a
// one-byte type tag. The block's hash is never part of the encoding; it is
// always recomputed (or, for a block just decoded from the store, taken
// from the key it was stored under).
func EncodeBlock(b model.Block) []byte {
	switch blk := b.(type) {
	case *model.SendBlock:
		return append([]byte{byte(model.BlockTypeSend)}, encodeSend(blk)...)
	case *model.ReceiveBlock:
		return append([]byte{byte(model.BlockTypeReceive)}, encodeReceive(blk)...)
	case *model.OpenBlock:
		return append([]byte{byte(model.BlockTypeOpen)}, encodeOpen(blk)...)
	case *model.ChangeBlock:
		return append([]byte{byte(model.BlockTypeChange)}, encodeChange(blk)...)
	case *model.StateBlock:
		return append([]byte{byte(model.BlockTypeState)}, encodeState(blk)...)
	default:
		panic("blockcodec: unknown block variant")
	}
}

// DecodeBlock reverses EncodeBlock. hash is the key the record was stored
// under, and is attached to the decoded block directly.
func DecodeBlock(data []byte, hash model.Hash) (model.Block, error) {
	if len(data) < 1 {
		return nil, errors.New("blockcodec: empty block record")
	}
	blockType := model.BlockType(data[0])
	body := data[1:]

	var b model.Block
	var err error
	switch blockType {
	case model.BlockTypeSend:
		b, err = decodeSend(body)
	case model.BlockTypeReceive:
		b, err = decodeReceive(body)
	case model.BlockTypeOpen:
		b, err = decodeOpen(body)
	case model.BlockTypeChange:
		b, err = decodeChange(body)
	case model.BlockTypeState:
		b, err = decodeState(body)
	default:
		return nil, errors.Errorf("blockcodec: unknown block type tag %d", blockType)
	}
	if err != nil {
		return nil, err
	}
	setHash(b, hash)
	return b, nil
}

func setHash(b model.Block, hash model.Hash) {
	type hashSetter interface {
		SetHash(model.Hash)
	}
	b.(hashSetter).SetHash(hash)
}

func encodeSend(b *model.SendBlock) []byte {
	buf := make([]byte, 0, model.HashSize*2+amount.Size+model.SignatureSize)
	buf = append(buf, b.Previous[:]...)
	buf = append(buf, b.Destination[:]...)
	buf = append(buf, b.Balance.Bytes()...)
	buf = append(buf, b.Signature_[:]...)
	return buf
}

func decodeSend(data []byte) (*model.SendBlock, error) {
	const wantLen = model.HashSize*2 + amount.Size + model.SignatureSize
	if len(data) != wantLen {
		return nil, errors.Errorf("blockcodec: send record has length %d, want %d", len(data), wantLen)
	}
	b := &model.SendBlock{}
	off := 0
	copy(b.Previous[:], data[off:off+model.HashSize])
	off += model.HashSize
	copy(b.Destination[:], data[off:off+model.HashSize])
	off += model.HashSize
	b.Balance = amount.FromBytes(data[off : off+amount.Size])
	off += amount.Size
	copy(b.Signature_[:], data[off:off+model.SignatureSize])
	return b, nil
}

func encodeReceive(b *model.ReceiveBlock) []byte {
	buf := make([]byte, 0, model.HashSize*2+model.SignatureSize)
	buf = append(buf, b.Previous[:]...)
	buf = append(buf, b.Source[:]...)
	buf = append(buf, b.Signature_[:]...)
	return buf
}

func decodeReceive(data []byte) (*model.ReceiveBlock, error) {
	const wantLen = model.HashSize*2 + model.SignatureSize
	if len(data) != wantLen {
		return nil, errors.Errorf("blockcodec: receive record has length %d, want %d", len(data), wantLen)
	}
	b := &model.ReceiveBlock{}
	off := 0
	copy(b.Previous[:], data[off:off+model.HashSize])
	off += model.HashSize
	copy(b.Source[:], data[off:off+model.HashSize])
	off += model.HashSize
	copy(b.Signature_[:], data[off:off+model.SignatureSize])
	return b, nil
}

func encodeOpen(b *model.OpenBlock) []byte {
	buf := make([]byte, 0, model.HashSize*3+model.SignatureSize)
	buf = append(buf, b.Source[:]...)
	buf = append(buf, b.Representative[:]...)
	buf = append(buf, b.AccountField[:]...)
	buf = append(buf, b.Signature_[:]...)
	return buf
}

func decodeOpen(data []byte) (*model.OpenBlock, error) {
	const wantLen = model.HashSize*3 + model.SignatureSize
	if len(data) != wantLen {
		return nil, errors.Errorf("blockcodec: open record has length %d, want %d", len(data), wantLen)
	}
	b := &model.OpenBlock{}
	off := 0
	copy(b.Source[:], data[off:off+model.HashSize])
	off += model.HashSize
	copy(b.Representative[:], data[off:off+model.HashSize])
	off += model.HashSize
	copy(b.AccountField[:], data[off:off+model.HashSize])
	off += model.HashSize
	copy(b.Signature_[:], data[off:off+model.SignatureSize])
	return b, nil
}

func encodeChange(b *model.ChangeBlock) []byte {
	buf := make([]byte, 0, model.HashSize*2+model.SignatureSize)
	buf = append(buf, b.Previous[:]...)
	buf = append(buf, b.Representative[:]...)
	buf = append(buf, b.Signature_[:]...)
	return buf
}

func decodeChange(data []byte) (*model.ChangeBlock, error) {
	const wantLen = model.HashSize*2 + model.SignatureSize
	if len(data) != wantLen {
		return nil, errors.Errorf("blockcodec: change record has length %d, want %d", len(data), wantLen)
	}
	b := &model.ChangeBlock{}
	off := 0
	copy(b.Previous[:], data[off:off+model.HashSize])
	off += model.HashSize
	copy(b.Representative[:], data[off:off+model.HashSize])
	off += model.HashSize
	copy(b.Signature_[:], data[off:off+model.SignatureSize])
	return b, nil
}

func encodeState(b *model.StateBlock) []byte {
	buf := make([]byte, 0, model.HashSize*4+amount.Size+model.SignatureSize)
	buf = append(buf, b.AccountField[:]...)
	buf = append(buf, b.Previous[:]...)
	buf = append(buf, b.Representative[:]...)
	buf = append(buf, b.Balance.Bytes()...)
	buf = append(buf, b.Link[:]...)
	buf = append(buf, b.Signature_[:]...)
	return buf
}

func decodeState(data []byte) (*model.StateBlock, error) {
	const wantLen = model.HashSize*4 + amount.Size + model.SignatureSize
	if len(data) != wantLen {
		return nil, errors.Errorf("blockcodec: state record has length %d, want %d", len(data), wantLen)
	}
	b := &model.StateBlock{}
	off := 0
	copy(b.AccountField[:], data[off:off+model.HashSize])
	off += model.HashSize
	copy(b.Previous[:], data[off:off+model.HashSize])
	off += model.HashSize
	copy(b.Representative[:], data[off:off+model.HashSize])
	off += model.HashSize
	b.Balance = amount.FromBytes(data[off : off+amount.Size])
	off += amount.Size
	copy(b.Link[:], data[off:off+model.HashSize])
	off += model.HashSize
	copy(b.Signature_[:], data[off:off+model.SignatureSize])
	return b, nil
}

// EncodeSideband serializes a Sideband record.
func EncodeSideband(s model.Sideband) []byte {
	buf := make([]byte, 0, 1+model.HashSize*2+amount.Size+8+8)
	buf = append(buf, byte(s.Type))
	buf = append(buf, s.Account[:]...)
	buf = append(buf, s.Successor[:]...)
	buf = append(buf, s.Balance.Bytes()...)
	var heightBuf [8]byte
	binary.BigEndian.PutUint64(heightBuf[:], uint64(s.Height))
	buf = append(buf, heightBuf[:]...)
	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(s.Timestamp))
	buf = append(buf, tsBuf[:]...)
	return buf
}

// DecodeSideband reverses EncodeSideband.
func DecodeSideband(data []byte) (model.Sideband, error) {
	const wantLen = 1 + model.HashSize*2 + amount.Size + 8 + 8
	if len(data) != wantLen {
		return model.Sideband{}, errors.Errorf("blockcodec: sideband record has length %d, want %d", len(data), wantLen)
	}
	var s model.Sideband
	off := 0
	s.Type = model.BlockType(data[off])
	off++
	copy(s.Account[:], data[off:off+model.HashSize])
	off += model.HashSize
	copy(s.Successor[:], data[off:off+model.HashSize])
	off += model.HashSize
	s.Balance = amount.FromBytes(data[off : off+amount.Size])
	off += amount.Size
	s.Height = model.Height(binary.BigEndian.Uint64(data[off : off+8]))
	off += 8
	s.Timestamp = model.Timestamp(binary.BigEndian.Uint64(data[off : off+8]))
	return s, nil
}
