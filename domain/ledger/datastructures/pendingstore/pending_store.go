package pendingstore

import (
	"github.com/blocklattice/ledgerd/domain/ledger/database"
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/utils/amount"
	"github.com/pkg/errors"
)

var bucketV0 = database.MakeBucket([]byte("pending_v0"))
var bucketV1 = database.MakeBucket([]byte("pending_v1"))

// Store implements model.PendingStore over the dual epoch-partitioned
// pending_v0/pending_v1 tables. The epoch a pending entry is filed under is
// the epoch the sending account was at when it created the send, per
// PendingEntry.Epoch.
type Store struct{}

// New returns a ready to use pending Store.
func New() *Store {
	return &Store{}
}

func bucketForEpoch(epoch model.Epoch) model.DBBucket {
	if epoch >= model.Epoch1 {
		return bucketV1
	}
	return bucketV0
}

// dbKey nests each destination account under its own sub-bucket so that
// SumForAccount can range-scan exactly one destination's pending rows
// instead of the whole epoch table.
func (s *Store) dbKey(epoch model.Epoch, key model.PendingKey) model.DBKey {
	return bucketForEpoch(epoch).Bucket(key.Destination[:]).Key(key.SendHash[:])
}

func encode(entry model.PendingEntry) []byte {
	buf := make([]byte, 0, model.HashSize+amount.Size)
	buf = append(buf, entry.Source[:]...)
	buf = append(buf, entry.Amount.Bytes()...)
	return buf
}

func decode(data []byte, epoch model.Epoch) (model.PendingEntry, error) {
	const wantLen = model.HashSize + amount.Size
	if len(data) != wantLen {
		return model.PendingEntry{}, errors.Errorf("pendingstore: record has length %d, want %d", len(data), wantLen)
	}
	var entry model.PendingEntry
	copy(entry.Source[:], data[:model.HashSize])
	entry.Amount = amount.FromBytes(data[model.HashSize:wantLen])
	entry.Epoch = epoch
	return entry, nil
}

func (s *Store) Get(dbTx model.DBReader, key model.PendingKey) (model.PendingEntry, bool, error) {
	for _, epoch := range []model.Epoch{model.Epoch1, model.Epoch0} {
		data, err := dbTx.Get(s.dbKey(epoch, key))
		if err == nil {
			entry, decodeErr := decode(data, epoch)
			if decodeErr != nil {
				return model.PendingEntry{}, false, decodeErr
			}
			return entry, true, nil
		}
		if !database.IsNotFoundError(err) {
			return model.PendingEntry{}, false, err
		}
	}
	return model.PendingEntry{}, false, nil
}

func (s *Store) Put(dbTx model.DBTransaction, key model.PendingKey, entry model.PendingEntry) error {
	return dbTx.Put(s.dbKey(entry.Epoch, key), encode(entry))
}

func (s *Store) Delete(dbTx model.DBTransaction, key model.PendingKey, epoch model.Epoch) error {
	return dbTx.Delete(s.dbKey(epoch, key))
}

func (s *Store) Exists(dbTx model.DBReader, key model.PendingKey) (bool, error) {
	_, found, err := s.Get(dbTx, key)
	return found, err
}

// SumForAccount sums every pending entry addressed to account, across both
// epoch tables, by ranging over each table's [account, account+1) prefix.
func (s *Store) SumForAccount(dbTx model.DBReader, account model.Account) (amount.Amount, error) {
	total := amount.Zero
	for _, epoch := range []model.Epoch{model.Epoch0, model.Epoch1} {
		sum, err := s.sumInBucket(dbTx, bucketForEpoch(epoch).Bucket(account[:]), epoch)
		if err != nil {
			return amount.Zero, err
		}
		total = total.Add(sum)
	}
	return total, nil
}

func (s *Store) sumInBucket(dbTx model.DBReader, accountBucket model.DBBucket, epoch model.Epoch) (amount.Amount, error) {
	cursor, err := dbTx.Cursor(accountBucket)
	if err != nil {
		return amount.Zero, err
	}
	defer cursor.Close()

	total := amount.Zero
	for cursor.Next() {
		value, err := cursor.Value()
		if err != nil {
			return amount.Zero, err
		}
		entry, err := decode(value, epoch)
		if err != nil {
			return amount.Zero, err
		}
		total = total.Add(entry.Amount)
	}
	return total, nil
}
