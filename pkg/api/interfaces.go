// Package api provides interfaces for dependency injection
package api

import (
	"context"
	"log/slog"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/ypbank/pkg/record"
)

// RecordStore is the ledger surface used by the handlers
type RecordStore interface {
	Import(set record.Set) (ksuid.KSUID, error)
	Get(txID uint64) (record.Transaction, error)
	Delete(txID uint64) error
	All() (record.Set, error)
	Batch(id ksuid.KSUID) (record.Set, error)
	Count() (int, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves until ctx is cancelled
	StartServer(ctx context.Context, store RecordStore, config ServerConfig, logger *slog.Logger) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
