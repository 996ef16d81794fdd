// Package di provides dependency injection container
package di

import (
	"github.com/ssargent/ypbank/pkg/api"    //nolint:depguard
	"github.com/ssargent/ypbank/pkg/ledger" //nolint:depguard
)

// LedgerOpener opens the record ledger stored in a directory
type LedgerOpener func(dir string) (*ledger.Ledger, error)

// Container holds all the dependencies for the application
type Container struct {
	ledgerOpener  LedgerOpener
	serverFactory api.ServerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		ledgerOpener:  ledger.Open,
		serverFactory: api.NewServerFactory(),
	}
}

// OpenLedger opens the ledger in dir
func (c *Container) OpenLedger(dir string) (*ledger.Ledger, error) {
	return c.ledgerOpener(dir)
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetLedgerOpener allows overriding how the ledger is opened (for testing)
func (c *Container) SetLedgerOpener(opener LedgerOpener) {
	c.ledgerOpener = opener
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}
