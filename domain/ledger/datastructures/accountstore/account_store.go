package accountstore

import (
	"github.com/blocklattice/ledgerd/domain/ledger/database"
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/pkg/errors"
)

var bucketV0 = database.MakeBucket([]byte("accounts_v0"))
var bucketV1 = database.MakeBucket([]byte("accounts_v1"))

// Store implements model.AccountStore over the dual epoch-partitioned
// accounts_v0/accounts_v1 tables.
type Store struct{}

// New returns a ready to use account Store.
func New() *Store {
	return &Store{}
}

func bucketForEpoch(epoch model.Epoch) model.DBBucket {
	if epoch >= model.Epoch1 {
		return bucketV1
	}
	return bucketV0
}

func (s *Store) key(epoch model.Epoch, account model.Account) model.DBKey {
	return bucketForEpoch(epoch).Key(account[:])
}

func encode(info model.AccountInfo) []byte {
	buf := make([]byte, 0, model.HashSize*3)
	buf = append(buf, info.Head[:]...)
	buf = append(buf, info.Representative[:]...)
	buf = append(buf, info.OpenBlock[:]...)
	return buf
}

func decode(data []byte, epoch model.Epoch) (model.AccountInfo, error) {
	const wantLen = model.HashSize * 3
	if len(data) != wantLen {
		return model.AccountInfo{}, errors.Errorf("accountstore: record has length %d, want %d", len(data), wantLen)
	}
	var info model.AccountInfo
	off := 0
	copy(info.Head[:], data[off:off+model.HashSize])
	off += model.HashSize
	copy(info.Representative[:], data[off:off+model.HashSize])
	off += model.HashSize
	copy(info.OpenBlock[:], data[off:off+model.HashSize])
	info.Epoch = epoch
	return info, nil
}

// Get looks up account, trying accounts_v1 first: an account can only ever
// live in one epoch table at a time, but v1 is checked first since epoch
// upgrades are one-way and a v1 row, once written, is the authoritative
// state going forward.
func (s *Store) Get(dbTx model.DBReader, account model.Account) (model.AccountInfo, bool, error) {
	for _, epoch := range []model.Epoch{model.Epoch1, model.Epoch0} {
		data, err := dbTx.Get(bucketForEpoch(epoch).Key(account[:]))
		if err == nil {
			info, decodeErr := decode(data, epoch)
			if decodeErr != nil {
				return model.AccountInfo{}, false, decodeErr
			}
			return info, true, nil
		}
		if !database.IsNotFoundError(err) {
			return model.AccountInfo{}, false, err
		}
	}
	return model.AccountInfo{}, false, nil
}

func (s *Store) Put(dbTx model.DBTransaction, account model.Account, info model.AccountInfo) error {
	return dbTx.Put(s.key(info.Epoch, account), encode(info))
}

func (s *Store) Delete(dbTx model.DBTransaction, account model.Account, epoch model.Epoch) error {
	return dbTx.Delete(s.key(epoch, account))
}

func (s *Store) Exists(dbTx model.DBReader, account model.Account) (bool, error) {
	_, found, err := s.Get(dbTx, account)
	return found, err
}

// Move deletes account's row from fromEpoch's table, if present, before
// writing info into toEpoch's table. When fromEpoch == toEpoch this
// degenerates to a plain overwrite.
func (s *Store) Move(dbTx model.DBTransaction, account model.Account, fromEpoch, toEpoch model.Epoch, info model.AccountInfo) error {
	if fromEpoch != toEpoch {
		exists, err := dbTx.Has(s.key(fromEpoch, account))
		if err != nil {
			return err
		}
		if exists {
			if err := dbTx.Delete(s.key(fromEpoch, account)); err != nil {
				return err
			}
		}
	}
	return s.Put(dbTx, account, info)
}

// ForEach invokes fn once per account stored across accounts_v0 and
// accounts_v1, stopping at the first error either fn or the scan itself
// returns.
func (s *Store) ForEach(dbTx model.DBReader, fn func(account model.Account, info model.AccountInfo) error) error {
	for _, epoch := range []model.Epoch{model.Epoch0, model.Epoch1} {
		if err := s.forEachInBucket(dbTx, bucketForEpoch(epoch), epoch, fn); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) forEachInBucket(dbTx model.DBReader, bucket model.DBBucket, epoch model.Epoch, fn func(model.Account, model.AccountInfo) error) error {
	cursor, err := dbTx.Cursor(bucket)
	if err != nil {
		return err
	}
	defer cursor.Close()

	for cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			return err
		}
		value, err := cursor.Value()
		if err != nil {
			return err
		}
		var account model.Account
		copy(account[:], key.Suffix())
		info, err := decode(value, epoch)
		if err != nil {
			return err
		}
		if err := fn(account, info); err != nil {
			return err
		}
	}
	return nil
}
