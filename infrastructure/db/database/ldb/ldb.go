package ldb

import (
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/infrastructure/db/database"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB defines a thin wrapper around leveldb.DB that implements the
// model.DBManager interface.
type LevelDB struct {
	ldb *leveldb.DB
}

// NewLevelDB opens (creating if necessary) a leveldb database at path and
// returns it wrapped as a model.DBManager.
func NewLevelDB(path string) (model.DBManager, error) {
	ldb, err := leveldb.OpenFile(path, Options())
	if err != nil {
		return nil, errors.Wrapf(err, "failed opening ledger store at %s", path)
	}
	return &LevelDB{ldb: ldb}, nil
}

// Close closes the connection to the underlying leveldb database.
func (l *LevelDB) Close() error {
	return errors.WithStack(l.ldb.Close())
}

// BeginReadTx begins a new read-only, point-in-time transaction, backed by a
// leveldb snapshot. Any number of read transactions may be open at once,
// concurrently with the single in-flight write transaction, if any.
func (l *LevelDB) BeginReadTx() (model.DBReadTransaction, error) {
	snapshot, err := l.ldb.GetSnapshot()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &levelDBReadTransaction{snapshot: snapshot}, nil
}

// BeginWriteTx begins a new read-write transaction. leveldb.DB.OpenTransaction
// blocks internally until any other open transaction is committed or
// discarded, which gives us the required single-writer, serializable
// semantics for free.
func (l *LevelDB) BeginWriteTx() (model.DBTransaction, error) {
	ldbTx, err := l.ldb.OpenTransaction()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &levelDBTransaction{ldbTx: ldbTx}, nil
}

func convertNotFoundErr(err error) error {
	if errors.Is(err, leveldb.ErrNotFound) {
		return errors.WithStack(database.ErrNotFound)
	}
	return errors.WithStack(err)
}

func cursorRange(bucket model.DBBucket) *util.Range {
	return util.BytesPrefix(bucket.Path())
}

// levelDBReadTransaction implements model.DBReadTransaction over a leveldb
// snapshot.
type levelDBReadTransaction struct {
	snapshot *leveldb.Snapshot
	closed   bool
}

func (tx *levelDBReadTransaction) Get(key model.DBKey) ([]byte, error) {
	value, err := tx.snapshot.Get(key.Bytes(), nil)
	if err != nil {
		return nil, convertNotFoundErr(err)
	}
	return value, nil
}

func (tx *levelDBReadTransaction) Has(key model.DBKey) (bool, error) {
	has, err := tx.snapshot.Has(key.Bytes(), nil)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return has, nil
}

func (tx *levelDBReadTransaction) Cursor(bucket model.DBBucket) (model.DBCursor, error) {
	iter := tx.snapshot.NewIterator(cursorRange(bucket), nil)
	return newLevelDBCursor(iter, bucket), nil
}

func (tx *levelDBReadTransaction) Discard() {
	if tx.closed {
		return
	}
	tx.snapshot.Release()
	tx.closed = true
}

// levelDBTransaction implements model.DBTransaction over a leveldb
// *leveldb.Transaction.
type levelDBTransaction struct {
	ldbTx  *leveldb.Transaction
	closed bool
}

func (tx *levelDBTransaction) Get(key model.DBKey) ([]byte, error) {
	value, err := tx.ldbTx.Get(key.Bytes(), nil)
	if err != nil {
		return nil, convertNotFoundErr(err)
	}
	return value, nil
}

func (tx *levelDBTransaction) Has(key model.DBKey) (bool, error) {
	has, err := tx.ldbTx.Has(key.Bytes(), nil)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return has, nil
}

func (tx *levelDBTransaction) Cursor(bucket model.DBBucket) (model.DBCursor, error) {
	iter := tx.ldbTx.NewIterator(cursorRange(bucket), nil)
	return newLevelDBCursor(iter, bucket), nil
}

func (tx *levelDBTransaction) Put(key model.DBKey, value []byte) error {
	return errors.WithStack(tx.ldbTx.Put(key.Bytes(), value, nil))
}

func (tx *levelDBTransaction) Delete(key model.DBKey) error {
	return errors.WithStack(tx.ldbTx.Delete(key.Bytes(), nil))
}

func (tx *levelDBTransaction) Commit() error {
	if tx.closed {
		return errors.New("cannot commit an already closed transaction")
	}
	tx.closed = true
	return errors.WithStack(tx.ldbTx.Commit())
}

func (tx *levelDBTransaction) Rollback() error {
	if tx.closed {
		return errors.New("cannot roll back an already closed transaction")
	}
	tx.closed = true
	tx.ldbTx.Discard()
	return nil
}

func (tx *levelDBTransaction) RollbackUnlessClosed() error {
	if tx.closed {
		return nil
	}
	tx.closed = true
	tx.ldbTx.Discard()
	return nil
}

// levelDBCursor implements model.DBCursor over a leveldb iterator scoped to
// a single bucket's key prefix.
type levelDBCursor struct {
	bucket  model.DBBucket
	iter    iterator.Iterator
	started bool
	closed  bool
}

func newLevelDBCursor(iter iterator.Iterator, bucket model.DBBucket) *levelDBCursor {
	return &levelDBCursor{bucket: bucket, iter: iter}
}

func (c *levelDBCursor) First() bool {
	c.started = true
	return c.iter.First()
}

func (c *levelDBCursor) Next() bool {
	if !c.started {
		c.started = true
		return c.iter.First()
	}
	return c.iter.Next()
}

func (c *levelDBCursor) Seek(key model.DBKey) error {
	c.started = true
	if !c.iter.Seek(key.Bytes()) {
		return errors.WithStack(database.ErrNotFound)
	}
	return nil
}

func (c *levelDBCursor) Key() (model.DBKey, error) {
	fullKey := c.iter.Key()
	if fullKey == nil {
		return nil, errors.WithStack(database.ErrNotFound)
	}
	suffix := fullKey[len(c.bucket.Path()):]
	keyCopy := make([]byte, len(suffix))
	copy(keyCopy, suffix)
	return c.bucket.Key(keyCopy), nil
}

func (c *levelDBCursor) Value() ([]byte, error) {
	value := c.iter.Value()
	if value == nil {
		return nil, errors.WithStack(database.ErrNotFound)
	}
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	return valueCopy, nil
}

func (c *levelDBCursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.iter.Release()
	return errors.WithStack(c.iter.Error())
}
