// Package api provides factory implementations for dependency injection
package api

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter registers metrics with the process-wide prometheus registry
type DefaultServerStarter struct{}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(ctx context.Context, store RecordStore, config ServerConfig, logger *slog.Logger) error {
	return StartServer(ctx, store, config, logger, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}
