package cmd

import (
	"fmt"
	"strconv"

	"github.com/ssargent/ypbank/pkg/ledger"
)

// openLedger opens the configured ledger through the container.
func openLedger() (*ledger.Ledger, error) {
	if err := requireContainer(); err != nil {
		return nil, err
	}
	l, err := container.OpenLedger(appConfig.Ledger.Dir)
	if err != nil {
		return nil, err
	}
	logger.Debug("opened ledger", "dir", appConfig.Ledger.Dir)
	return l, nil
}

func parseTxID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid transaction id %q", arg)
	}
	return id, nil
}
