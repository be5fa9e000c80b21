package hashes

import "github.com/blocklattice/ledgerd/domain/ledger/model"

// cmp compares two hashes and returns:
//
//	-1 if a <  b
//	 0 if a == b
//	+1 if a >  b
func cmp(a, b model.Hash) int {
	for i := 0; i < model.HashSize; i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// Less returns true iff hash a is less than hash b.
func Less(a, b model.Hash) bool {
	return cmp(a, b) < 0
}
