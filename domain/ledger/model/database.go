package model

// DBCursor iterates over database entries given some bucket.
type DBCursor interface {
	// Next moves the iterator to the next key/value pair. It returns false once
	// the iterator is exhausted. Panics if the cursor is closed.
	Next() bool

	// First moves the iterator to the first key/value pair. It returns false if
	// such a pair does not exist. Panics if the cursor is closed.
	First() bool

	// Seek moves the iterator to the first key/value pair whose key is greater
	// than or equal to the given key. It returns ErrNotFound if such pair does not
	// exist.
	Seek(key DBKey) error

	// Key returns the key of the current key/value pair, or ErrNotFound if done.
	// The caller should not modify the contents of the returned key, and
	// its contents may change on the next call to Next.
	Key() (DBKey, error)

	// Value returns the value of the current key/value pair, or ErrNotFound if done.
	// The caller should not modify the contents of the returned slice, and its
	// contents may change on the next call to Next.
	Value() ([]byte, error)

	// Close releases associated resources.
	Close() error
}

// DBReader defines a proxy over domain data access. It is satisfied by both
// read-only and read-write transactions, so query code in the ledger facade
// never needs to know which kind of transaction it was handed.
type DBReader interface {
	// Get gets the value for the given key. It returns
	// ErrNotFound if the given key does not exist.
	Get(key DBKey) ([]byte, error)

	// Has returns true if the database does contains the
	// given key.
	Has(key DBKey) (bool, error)

	// Cursor begins a new cursor over the given bucket. The cursor iterates
	// in key order over every key whose path starts with bucket's path,
	// including keys stored in bucket's sub-buckets.
	Cursor(bucket DBBucket) (DBCursor, error)
}

// DBWriter is an interface to write to the database.
type DBWriter interface {
	DBReader

	// Put sets the value for the given key. It overwrites
	// any previous value for that key.
	Put(key DBKey, value []byte) error

	// Delete deletes the value for the given key. Will not
	// return an error if the key doesn't exist.
	Delete(key DBKey) error
}

// DBReadTransaction is a read-only, point-in-time view of the database. Any
// number of read transactions may be open concurrently with each other and
// with a single in-flight write transaction.
type DBReadTransaction interface {
	DBReader

	// Discard releases the snapshot backing this transaction. Idempotent.
	Discard()
}

// DBTransaction is a proxy over domain data access that requires an open,
// exclusive read-write database transaction. The store guarantees at most
// one DBTransaction is open at a time (serializable, single-writer).
type DBTransaction interface {
	DBWriter

	// Rollback rolls back whatever changes were made to the
	// database within this transaction.
	Rollback() error

	// Commit commits whatever changes were made to the database
	// within this transaction.
	Commit() error

	// RollbackUnlessClosed rolls back changes that were made to
	// the database within the transaction, unless the transaction
	// had already been closed using either Rollback or Commit.
	RollbackUnlessClosed() error
}

// DBManager defines the interface of a database that can begin read and
// write transactions. It mirrors the store's tx_begin_read / tx_begin_write
// entry points: BeginReadTx never blocks on a writer, BeginWriteTx serializes
// against any other open write transaction.
type DBManager interface {
	// BeginReadTx opens a new read-only transaction.
	BeginReadTx() (DBReadTransaction, error)

	// BeginWriteTx opens a new read-write transaction. Blocks until any
	// other open write transaction is committed or rolled back.
	BeginWriteTx() (DBTransaction, error)

	// Close releases the underlying storage engine.
	Close() error
}

// DBKey is an interface for a database key.
type DBKey interface {
	Bytes() []byte
	Bucket() DBBucket
	Suffix() []byte
}

// DBBucket is an interface for a database bucket.
type DBBucket interface {
	Bucket(bucketBytes []byte) DBBucket
	Key(suffix []byte) DBKey
	Path() []byte
}
