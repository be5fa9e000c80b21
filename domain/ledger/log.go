package ledger

import "github.com/blocklattice/ledgerd/infrastructure/logger"

var log = logger.RegisterSubSystem("LDGR")
