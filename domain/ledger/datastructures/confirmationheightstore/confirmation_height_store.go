package confirmationheightstore

import (
	"encoding/binary"

	"github.com/blocklattice/ledgerd/domain/ledger/database"
	"github.com/blocklattice/ledgerd/domain/ledger/model"
)

var bucket = database.MakeBucket([]byte("confirmation_height"))

// Store implements model.ConfirmationHeightStore: account -> height. This
// is the hard floor rollback may never cross.
type Store struct{}

// New returns a ready to use confirmation height Store.
func New() *Store {
	return &Store{}
}

func (s *Store) key(account model.Account) model.DBKey {
	return bucket.Key(account[:])
}

func (s *Store) Get(dbTx model.DBReader, account model.Account) (model.Height, bool, error) {
	data, err := dbTx.Get(s.key(account))
	if err != nil {
		if database.IsNotFoundError(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return model.Height(binary.BigEndian.Uint64(data)), true, nil
}

func (s *Store) Put(dbTx model.DBTransaction, account model.Account, height model.Height) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(height))
	return dbTx.Put(s.key(account), buf)
}

func (s *Store) Delete(dbTx model.DBTransaction, account model.Account) error {
	return dbTx.Delete(s.key(account))
}

func (s *Store) Exists(dbTx model.DBReader, account model.Account) (bool, error) {
	return dbTx.Has(s.key(account))
}

// ForEach invokes fn once per account with a recorded confirmation height,
// stopping at the first error either fn or the scan itself returns.
func (s *Store) ForEach(dbTx model.DBReader, fn func(account model.Account, height model.Height) error) error {
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
		if err := fn(account, model.Height(binary.BigEndian.Uint64(value))); err != nil {
			return err
		}
	}
	return nil
}
