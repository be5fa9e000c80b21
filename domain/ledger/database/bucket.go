package database

import (
	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/infrastructure/db/database"
)

// MakeBucket creates a new top-level model.DBBucket rooted at the given path
// segments.
func MakeBucket(path ...[]byte) model.DBBucket {
	return newDBBucket(database.MakeBucket(path...))
}

type dbBucket struct {
	bucket *database.Bucket
}

func (d dbBucket) Bucket(bucketBytes []byte) model.DBBucket {
	return newDBBucket(d.bucket.Bucket(bucketBytes))
}

func (d dbBucket) Key(suffix []byte) model.DBKey {
	return newDBKey(d.bucket.Key(suffix))
}

func (d dbBucket) Path() []byte {
	return d.bucket.Path()
}

func newDBBucket(bucket *database.Bucket) model.DBBucket {
	return &dbBucket{bucket: bucket}
}

type dbKey struct {
	key *database.Key
}

func (d dbKey) Bytes() []byte {
	return d.key.Bytes()
}

func (d dbKey) Bucket() model.DBBucket {
	return newDBBucket(d.key.Bucket())
}

func (d dbKey) Suffix() []byte {
	return d.key.Suffix()
}

func newDBKey(key *database.Key) model.DBKey {
	return &dbKey{key: key}
}
