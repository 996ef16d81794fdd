package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/ypbank/pkg/ledger"
	"github.com/ssargent/ypbank/pkg/logging"
)

func TestStartServer_ShutsDownOnCancel(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "ypbank_server_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	l, err := ledger.Open(tmpDir)
	require.NoError(t, err)
	defer l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	registry := prometheus.NewRegistry()

	done := make(chan error, 1)
	go func() {
		done <- StartServer(ctx, l, ServerConfig{Bind: "127.0.0.1", Port: 0, MaxBodyBytes: 1024}, logging.Discard(), registry, registry)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStartServer_ListenError(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "ypbank_server_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	l, err := ledger.Open(tmpDir)
	require.NoError(t, err)
	defer l.Close()

	registry := prometheus.NewRegistry()
	err = StartServer(context.Background(), l, ServerConfig{Bind: "127.0.0.1", Port: -1}, logging.Discard(), registry, registry)
	require.Error(t, err)
	assert.False(t, errors.Is(err, http.ErrServerClosed))
}

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics(prometheus.NewRegistry())
		NewMetrics(prometheus.NewRegistry())
	})
}
