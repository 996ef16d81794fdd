package api

import (
	"github.com/ssargent/ypbank/pkg/compare"
	"github.com/ssargent/ypbank/pkg/record"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port         int
	Bind         string
	APIKey       string // empty disables authentication
	MaxBodyBytes int64
}

// ImportResponse is returned after records are stored in the ledger
type ImportResponse struct {
	BatchID string `json:"batch_id"`
	Records int    `json:"records"`
}

// CompareResponse wraps a comparison report
type CompareResponse struct {
	Identical bool            `json:"identical"`
	Report    *compare.Report `json:"report"`
}

// RecordResponse is a single ledger record
type RecordResponse struct {
	Record record.Transaction `json:"record"`
}

// HealthResponse reports server liveness and ledger size
type HealthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}
