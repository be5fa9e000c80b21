package frontierstore

import (
	"github.com/blocklattice/ledgerd/domain/ledger/database"
	"github.com/blocklattice/ledgerd/domain/ledger/model"
)

var bucket = database.MakeBucket([]byte("frontiers"))

// Store implements model.FrontierStore: legacy head block hash -> owning
// account. State-block heads are never written here.
type Store struct{}

// New returns a ready to use frontier Store.
func New() *Store {
	return &Store{}
}

func (s *Store) key(hash model.Hash) model.DBKey {
	return bucket.Key(hash[:])
}

func (s *Store) Get(dbTx model.DBReader, hash model.Hash) (model.Account, bool, error) {
	data, err := dbTx.Get(s.key(hash))
	if err != nil {
		if database.IsNotFoundError(err) {
			return model.Account{}, false, nil
		}
		return model.Account{}, false, err
	}
	account, err := model.HashFromBytes(data)
	if err != nil {
		return model.Account{}, false, err
	}
	return account, true, nil
}

func (s *Store) Put(dbTx model.DBTransaction, hash model.Hash, account model.Account) error {
	return dbTx.Put(s.key(hash), account[:])
}

func (s *Store) Delete(dbTx model.DBTransaction, hash model.Hash) error {
	return dbTx.Delete(s.key(hash))
}
