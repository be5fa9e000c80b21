package blockvalidator

import "github.com/blocklattice/ledgerd/domain/ledger/database"

func isNotFound(err error) bool {
	return database.IsNotFoundError(err)
}
