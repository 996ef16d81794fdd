package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/ypbank/pkg/codec"
	"github.com/ssargent/ypbank/pkg/ledger"
	"github.com/ssargent/ypbank/pkg/logging"
	"github.com/ssargent/ypbank/pkg/record"
)

const testCSV = "TX_ID,TX_TYPE,FROM_USER_ID,TO_USER_ID,AMOUNT,TIMESTAMP,STATUS,DESCRIPTION\n" +
	"1001,DEPOSIT,0,42,10000,1633036860000,SUCCESS,\"Record number 1\"\n" +
	"1002,TRANSFER,42,7,500,1633036920000,PENDING,\"Record number 2\"\n"

type testEnv struct {
	handler  http.Handler
	ledger   *ledger.Ledger
	metrics  *Metrics
	registry *prometheus.Registry
}

func setupTestServer(t *testing.T, apiKey string) *testEnv {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "ypbank_api_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	l, err := ledger.Open(tmpDir)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	config := ServerConfig{APIKey: apiKey, MaxBodyBytes: 1 << 20}
	server := NewServer(l, config, metrics, logging.Discard())

	return &testEnv{
		handler:  NewRouter(server, registry),
		ledger:   l,
		metrics:  metrics,
		registry: registry,
	}
}

func (e *testEnv) do(t *testing.T, method, target string, body []byte, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, data interface{}) APIResponse {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&raw))
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return APIResponse{Success: raw.Success, Error: raw.Error}
}

func TestHealth(t *testing.T) {
	env := setupTestServer(t, "")

	w := env.do(t, "GET", "/api/v1/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var health HealthResponse
	resp := decodeResponse(t, w, &health)
	assert.True(t, resp.Success)
	assert.Equal(t, "healthy", health.Status)
	assert.Zero(t, health.Records)
}

func TestAuthentication(t *testing.T) {
	env := setupTestServer(t, "secret")

	w := env.do(t, "GET", "/api/v1/health", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, "GET", "/api/v1/health", nil, http.Header{"X-Api-Key": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, "GET", "/api/v1/health", nil, http.Header{"X-Api-Key": {"secret"}})
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.authRequestsTotal.WithLabelValues(statusError)))
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.authRequestsTotal.WithLabelValues(statusSuccess)))

	// metrics stay scrapeable without a key
	w = env.do(t, "GET", "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ypbank_auth_requests_total")
}

func TestConvert(t *testing.T) {
	env := setupTestServer(t, "")

	w := env.do(t, "POST", "/api/v1/convert?from=csv&to=binary", []byte(testCSV), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "2", w.Header().Get(headerRecordCount))

	set, err := codec.Binary{}.Decode(w.Body)
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.Equal(t, uint64(1002), set[1].TxID)
	assert.Equal(t, record.Pending, set[1].Status)

	assert.Equal(t, float64(2), testutil.ToFloat64(env.metrics.codecRecordsTotal.WithLabelValues("decode", "csv")))
	assert.Equal(t, float64(2), testutil.ToFloat64(env.metrics.codecRecordsTotal.WithLabelValues("encode", "binary")))
}

func TestConvert_Errors(t *testing.T) {
	env := setupTestServer(t, "")

	testCases := []struct {
		name     string
		target   string
		body     string
		status   int
		contains string
	}{
		{"unknown source format", "/api/v1/convert?from=xml&to=csv", testCSV, http.StatusBadRequest, "Invalid from parameter"},
		{"missing target format", "/api/v1/convert?from=csv", testCSV, http.StatusBadRequest, "Invalid to parameter"},
		{"malformed input", "/api/v1/convert?from=txt&to=csv", "TX_TYPE DEPOSIT\n", http.StatusBadRequest, "malformed line"},
		{"bad magic", "/api/v1/convert?from=binary&to=csv", "\xde\xad\xbe\xef\x00\x00\x00\x2e", http.StatusBadRequest, "0xDEADBEEF"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, "POST", tc.target, []byte(tc.body), nil)
			assert.Equal(t, tc.status, w.Code)

			resp := decodeResponse(t, w, nil)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, tc.contains)
		})
	}
}

func TestConvert_BodyTooLarge(t *testing.T) {
	env := setupTestServer(t, "")

	body := testCSV + strings.Repeat("1003,DEPOSIT,0,42,1,1,SUCCESS,\"x\"\n", 40000)
	w := env.do(t, "POST", "/api/v1/convert?from=csv&to=txt", []byte(body), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for k, v := range files {
		fw, err := mw.CreateFormFile(k, k+".dat")
		require.NoError(t, err)
		_, err = fw.Write([]byte(v))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func TestCompare(t *testing.T) {
	env := setupTestServer(t, "")

	var text bytes.Buffer
	require.NoError(t, codec.Text{}.Encode(&text, record.Set{
		{TxID: 1001, TxType: record.Deposit, ToUserID: 42, Amount: 99, Timestamp: 1633036860000, Description: "Record number 1"},
		{TxID: 1003, TxType: record.Deposit, Description: "extra"},
	}))

	body, contentType := multipartBody(t,
		map[string]string{"format1": "csv", "format2": "txt"},
		map[string]string{"file1": testCSV, "file2": text.String()},
	)
	w := env.do(t, "POST", "/api/v1/compare", body, http.Header{"Content-Type": {contentType}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result CompareResponse
	resp := decodeResponse(t, w, &result)
	require.True(t, resp.Success)
	assert.False(t, result.Identical)
	require.Len(t, result.Report.Mismatches, 1)
	assert.Equal(t, uint64(1001), result.Report.Mismatches[0].TxID)
	assert.Equal(t, record.FieldAmount, result.Report.Mismatches[0].Fields[0].Field)
	require.Len(t, result.Report.OnlyInFirst, 1)
	assert.Equal(t, uint64(1002), result.Report.OnlyInFirst[0].TxID)
	require.Len(t, result.Report.OnlyInSecond, 1)
	assert.Equal(t, uint64(1003), result.Report.OnlyInSecond[0].TxID)
}

func TestCompare_MissingFile(t *testing.T) {
	env := setupTestServer(t, "")

	body, contentType := multipartBody(t,
		map[string]string{"format1": "csv", "format2": "csv"},
		map[string]string{"file1": testCSV},
	)
	w := env.do(t, "POST", "/api/v1/compare", body, http.Header{"Content-Type": {contentType}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeResponse(t, w, nil)
	assert.Contains(t, resp.Error, "file2")
}

func TestLedgerRoutes(t *testing.T) {
	env := setupTestServer(t, "")

	// import
	w := env.do(t, "POST", "/api/v1/records?format=csv", []byte(testCSV), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var imported ImportResponse
	decodeResponse(t, w, &imported)
	assert.Equal(t, 2, imported.Records)
	require.NotEmpty(t, imported.BatchID)
	assert.Equal(t, float64(2), testutil.ToFloat64(env.metrics.ledgerRecords))

	// get as JSON
	w = env.do(t, "GET", "/api/v1/records/1001", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got RecordResponse
	decodeResponse(t, w, &got)
	assert.Equal(t, uint64(10000), got.Record.Amount)
	assert.Equal(t, record.Deposit, got.Record.TxType)

	// get encoded
	w = env.do(t, "GET", "/api/v1/records/1001?format=txt", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "TX_ID: 1001")

	// export
	w = env.do(t, "GET", "/api/v1/records", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testCSV, w.Body.String())

	// batch
	w = env.do(t, "GET", "/api/v1/batches/"+imported.BatchID+"?format=binary", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	batch, err := codec.Binary{}.Decode(w.Body)
	require.NoError(t, err)
	assert.Len(t, batch, 2)

	// delete
	w = env.do(t, "DELETE", "/api/v1/records/1001", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, "GET", "/api/v1/records/1001", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, "DELETE", "/api/v1/records/1001", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	count, err := env.ledger.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLedgerRoutes_BadRequests(t *testing.T) {
	env := setupTestServer(t, "")

	testCases := []struct {
		name   string
		method string
		target string
		body   string
		status int
	}{
		{"non-numeric tx id", "GET", "/api/v1/records/abc", "", http.StatusBadRequest},
		{"negative tx id", "DELETE", "/api/v1/records/-1", "", http.StatusBadRequest},
		{"bad batch id", "GET", "/api/v1/batches/nope", "", http.StatusBadRequest},
		{"unknown batch", "GET", "/api/v1/batches/0ujtsYcgvSTl8PAuAdqWYSMnLOv", "", http.StatusNotFound},
		{"import without format", "POST", "/api/v1/records", testCSV, http.StatusBadRequest},
		{"import malformed", "POST", "/api/v1/records?format=csv", "TX_ID\n", http.StatusBadRequest},
		{"export unknown format", "GET", "/api/v1/records?format=json", "", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, tc.method, tc.target, []byte(tc.body), nil)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}

	count, err := env.ledger.Count()
	require.NoError(t, err)
	assert.Zero(t, count, "rejected imports must not store records")
}
