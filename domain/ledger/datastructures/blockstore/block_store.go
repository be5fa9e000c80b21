package blockstore

import (
	"encoding/binary"

	"github.com/blocklattice/ledgerd/domain/ledger/database"
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/ruleerrors"
	"github.com/blocklattice/ledgerd/domain/ledger/utils/amount"
	"github.com/blocklattice/ledgerd/domain/ledger/utils/blockcodec"
	"github.com/pkg/errors"
)

var bucket = database.MakeBucket([]byte("blocks"))

// metaBucket holds scalar bookkeeping rows (currently just the block count)
// that must never be mistaken for a block record by a bucket-wide cursor
// over the blocks table.
var metaBucket = database.MakeBucket([]byte("blocks-meta"))
var countKey = metaBucket.Key([]byte("count"))

// Store implements model.BlockStore directly against the transactional
// key-value store: no in-memory cache, since the ledger's own callers
// already hold whatever block they just looked up.
type Store struct{}

// New returns a ready to use block Store.
func New() *Store {
	return &Store{}
}

func (s *Store) blockKey(hash model.Hash) model.DBKey {
	return bucket.Key(hash[:])
}

// record layout: [2 bytes sideband length][1 byte epoch][sideband][block]
func (s *Store) write(dbTx model.DBTransaction, block model.Block, sideband model.Sideband, epoch model.Epoch) error {
	hash := block.Hash()
	sidebandBytes := blockcodec.EncodeSideband(sideband)
	blockBytes := blockcodec.EncodeBlock(block)

	record := make([]byte, 3+len(sidebandBytes)+len(blockBytes))
	binary.BigEndian.PutUint16(record[:2], uint16(len(sidebandBytes)))
	record[2] = byte(epoch)
	copy(record[3:3+len(sidebandBytes)], sidebandBytes)
	copy(record[3+len(sidebandBytes):], blockBytes)

	return dbTx.Put(s.blockKey(hash), record)
}

// Put writes a brand-new block into the store. The block count is bumped
// only the first time a given hash is written; SetSuccessor rewrites an
// existing record without touching the count.
func (s *Store) Put(dbTx model.DBTransaction, block model.Block, sideband model.Sideband, epoch model.Epoch) error {
	existed, err := s.Exists(dbTx, block.Hash())
	if err != nil {
		return err
	}
	if err := s.write(dbTx, block, sideband, epoch); err != nil {
		return err
	}
	if !existed {
		return s.bumpCount(dbTx, 1)
	}
	return nil
}

func (s *Store) Get(dbTx model.DBReader, hash model.Hash) (model.Block, model.Sideband, model.Epoch, error) {
	record, err := dbTx.Get(s.blockKey(hash))
	if err != nil {
		return nil, model.Sideband{}, model.EpochInvalid, err
	}
	if len(record) < 3 {
		return nil, model.Sideband{}, model.EpochInvalid, errors.WithStack(ruleerrors.ErrCorruptSideband)
	}
	sidebandLen := int(binary.BigEndian.Uint16(record[:2]))
	epoch := model.Epoch(record[2])
	if len(record) < 3+sidebandLen {
		return nil, model.Sideband{}, model.EpochInvalid, errors.WithStack(ruleerrors.ErrCorruptSideband)
	}
	sideband, err := blockcodec.DecodeSideband(record[3 : 3+sidebandLen])
	if err != nil {
		return nil, model.Sideband{}, model.EpochInvalid, err
	}
	block, err := blockcodec.DecodeBlock(record[3+sidebandLen:], hash)
	if err != nil {
		return nil, model.Sideband{}, model.EpochInvalid, err
	}
	return block, sideband, epoch, nil
}

func (s *Store) Exists(dbTx model.DBReader, hash model.Hash) (bool, error) {
	return dbTx.Has(s.blockKey(hash))
}

func (s *Store) Delete(dbTx model.DBTransaction, hash model.Hash) error {
	existed, err := s.Exists(dbTx, hash)
	if err != nil {
		return err
	}
	if err := dbTx.Delete(s.blockKey(hash)); err != nil {
		return err
	}
	if existed {
		return s.bumpCount(dbTx, -1)
	}
	return nil
}

func (s *Store) Account(dbTx model.DBReader, hash model.Hash) (model.Account, error) {
	_, sideband, _, err := s.Get(dbTx, hash)
	if err != nil {
		return model.Account{}, err
	}
	return sideband.Account, nil
}

func (s *Store) Height(dbTx model.DBReader, hash model.Hash) (model.Height, error) {
	_, sideband, _, err := s.Get(dbTx, hash)
	if err != nil {
		return 0, err
	}
	return sideband.Height, nil
}

func (s *Store) Balance(dbTx model.DBReader, hash model.Hash) (amount.Amount, error) {
	_, sideband, _, err := s.Get(dbTx, hash)
	if err != nil {
		return amount.Zero, err
	}
	return sideband.Balance, nil
}

func (s *Store) Epoch(dbTx model.DBReader, hash model.Hash) (model.Epoch, error) {
	_, _, epoch, err := s.Get(dbTx, hash)
	if err != nil {
		return model.EpochInvalid, err
	}
	return epoch, nil
}

func (s *Store) Count(dbTx model.DBReader) (uint64, error) {
	data, err := dbTx.Get(countKey)
	if err != nil {
		if database.IsNotFoundError(err) {
			return 0, nil
		}
		return 0, err
	}
	return binary.BigEndian.Uint64(data), nil
}

func (s *Store) bumpCount(dbTx model.DBTransaction, delta int64) error {
	current, err := s.Count(dbTx)
	if err != nil {
		return err
	}
	next := int64(current) + delta
	if next < 0 {
		next = 0
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(next))
	return dbTx.Put(countKey, buf)
}

// SetSuccessor updates hash's sideband to point at successor, preserving
// its stored epoch. Used when a child block is applied on top of hash, and
// cleared again on rollback.
func (s *Store) SetSuccessor(dbTx model.DBTransaction, hash model.Hash, successor model.Hash) error {
	block, sideband, epoch, err := s.Get(dbTx, hash)
	if err != nil {
		return err
	}
	sideband.Successor = successor
	return s.write(dbTx, block, sideband, epoch)
}
