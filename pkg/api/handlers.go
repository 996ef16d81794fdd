package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/ypbank/pkg/codec"
	"github.com/ssargent/ypbank/pkg/compare"
	"github.com/ssargent/ypbank/pkg/ledger"
	"github.com/ssargent/ypbank/pkg/record"
)

const headerRecordCount = "X-Record-Count"

// Server holds the API server state
type Server struct {
	store   RecordStore
	config  ServerConfig
	metrics *Metrics
	logger  *slog.Logger
}

// NewServer creates a new API server
func NewServer(store RecordStore, config ServerConfig, metrics *Metrics, logger *slog.Logger) *Server {
	return &Server{
		store:   store,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Count()
	if err != nil {
		s.fail(w, r, "count records", err)
		return
	}
	s.metrics.SetLedgerRecords(n)
	sendSuccess(w, HealthResponse{Status: "healthy", Records: n})
}

// handleConvert decodes the body with ?from= and writes it back with ?to=.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	from, ok := s.formatParam(w, r, "from", "")
	if !ok {
		return
	}
	to, ok := s.formatParam(w, r, "to", "")
	if !ok {
		return
	}

	set, err := s.decode(r.Body, from)
	if err != nil {
		s.fail(w, r, "decode request body", err)
		return
	}
	s.writeSet(w, r, set, to)
}

// handleCompare compares two uploaded files. The multipart form carries
// file1, file2, format1 and format2.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.config.MaxBodyBytes); err != nil {
		s.fail(w, r, "parse multipart form", badRequest(err))
		return
	}

	sets := make([]record.Set, 2)
	for i := range sets {
		field := fmt.Sprintf("file%d", i+1)
		format, err := codec.ParseFormat(r.FormValue(fmt.Sprintf("format%d", i+1)))
		if err != nil {
			s.fail(w, r, field, badRequest(err))
			return
		}

		file, _, err := r.FormFile(field)
		if err != nil {
			s.fail(w, r, field, badRequest(err))
			return
		}
		set, err := s.decode(file, format)
		file.Close()
		if err != nil {
			s.fail(w, r, field, err)
			return
		}
		sets[i] = set
	}

	report := compare.Compare(sets[0], sets[1])
	sendSuccess(w, CompareResponse{Identical: report.Identical(), Report: report})
}

// handleImport stores the decoded body in the ledger as one batch.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	format, ok := s.formatParam(w, r, "format", "")
	if !ok {
		return
	}

	set, err := s.decode(r.Body, format)
	if err != nil {
		s.fail(w, r, "decode request body", err)
		return
	}

	id, err := s.store.Import(set)
	if err != nil {
		s.fail(w, r, "import records", err)
		return
	}
	s.logger.Info("imported batch", "batch_id", id.String(), "records", len(set), "format", format)
	s.refreshLedgerGauge()

	sendSuccess(w, ImportResponse{BatchID: id.String(), Records: len(set)})
}

// handleExport writes the whole ledger in ?format=, csv by default.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, ok := s.formatParam(w, r, "format", codec.FormatCSV)
	if !ok {
		return
	}

	set, err := s.store.All()
	if err != nil {
		s.fail(w, r, "read ledger", err)
		return
	}
	s.writeSet(w, r, set, format)
}

// handleGetRecord returns one record as JSON, or encoded when ?format= is given.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	txID, ok := s.txIDParam(w, r)
	if !ok {
		return
	}

	tx, err := s.store.Get(txID)
	if err != nil {
		s.fail(w, r, "get record", err)
		return
	}

	if r.URL.Query().Get("format") == "" {
		sendSuccess(w, RecordResponse{Record: tx})
		return
	}
	format, ok := s.formatParam(w, r, "format", "")
	if !ok {
		return
	}
	s.writeSet(w, r, record.Set{tx}, format)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	txID, ok := s.txIDParam(w, r)
	if !ok {
		return
	}

	if err := s.store.Delete(txID); err != nil {
		s.fail(w, r, "delete record", err)
		return
	}
	s.refreshLedgerGauge()

	sendSuccess(w, map[string]string{"message": fmt.Sprintf("Transaction %d deleted", txID)})
}

// handleGetBatch writes the records of one import batch in ?format=.
func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	id, err := ksuid.Parse(chi.URLParam(r, "batchID"))
	if err != nil {
		sendError(w, "Invalid batch id", http.StatusBadRequest)
		return
	}
	format, ok := s.formatParam(w, r, "format", codec.FormatCSV)
	if !ok {
		return
	}

	set, err := s.store.Batch(id)
	if err != nil {
		s.fail(w, r, "read batch", err)
		return
	}
	s.writeSet(w, r, set, format)
}

// decode runs a codec and records its metrics.
func (s *Server) decode(body io.Reader, format codec.Format) (record.Set, error) {
	c, err := format.Codec()
	if err != nil {
		return nil, badRequest(err)
	}

	start := time.Now()
	set, err := c.Decode(body)
	s.metrics.RecordCodecOperation("decode", string(format), len(set), err, time.Since(start))
	return set, err
}

// writeSet encodes set into memory first so an encode failure can still
// produce an error response.
func (s *Server) writeSet(w http.ResponseWriter, r *http.Request, set record.Set, format codec.Format) {
	c, err := format.Codec()
	if err != nil {
		s.fail(w, r, "encode", badRequest(err))
		return
	}

	var buf bytes.Buffer
	start := time.Now()
	err = c.Encode(&buf, set)
	s.metrics.RecordCodecOperation("encode", string(format), len(set), err, time.Since(start))
	if err != nil {
		s.fail(w, r, "encode response", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set(headerRecordCount, strconv.Itoa(len(set)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) formatParam(w http.ResponseWriter, r *http.Request, name string, fallback codec.Format) (codec.Format, bool) {
	value := r.URL.Query().Get(name)
	if value == "" && fallback != "" {
		return fallback, true
	}
	format, err := codec.ParseFormat(value)
	if err != nil {
		sendError(w, fmt.Sprintf("Invalid %s parameter: %v", name, err), http.StatusBadRequest)
		return "", false
	}
	return format, true
}

func (s *Server) txIDParam(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	txID, err := strconv.ParseUint(chi.URLParam(r, "txID"), 10, 64)
	if err != nil {
		sendError(w, "Invalid transaction id", http.StatusBadRequest)
		return 0, false
	}
	return txID, true
}

func (s *Server) refreshLedgerGauge() {
	if n, err := s.store.Count(); err == nil {
		s.metrics.SetLedgerRecords(n)
	}
}

// requestError marks failures caused by the request itself
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{err: err}
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	var reqErr *requestError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case codec.IsDataError(err), errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err and sends it with the matching status code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "action", action, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "action", action, "path", r.URL.Path, "status", status, "error", err)
	}
	sendError(w, fmt.Sprintf("%s: %v", action, err), status)
}
