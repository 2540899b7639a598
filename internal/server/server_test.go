package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func fixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "test", "test_config.yaml"))
	if err != nil {
		t.Fatalf("failed to read test config: %v", err)
	}
	return data
}

func configWithUploadLimit(t *testing.T, size int64) *Config {
	t.Helper()
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	cfg.SetUploadSizeBytes(size)
	return cfg
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp["error"]
}

func TestHandleScheduleYAMLBody(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, "")

	req := httptest.NewRequest(http.MethodPost, "/api/schedule", bytes.NewReader(fixture(t)))
	req.Header.Set("Content-Type", "application/yaml")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp scheduleResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Schedules) != 3 {
		t.Fatalf("expected 3 schedules, got %d", len(resp.Schedules))
	}
	if resp.Schedules[0].Name != "equal principal" || resp.Schedules[0].TotalInterest != "780.00" {
		t.Fatalf("unexpected first schedule %s / %s", resp.Schedules[0].Name, resp.Schedules[0].TotalInterest)
	}
	if len(resp.Schedules[2].Installments) != 360 {
		t.Fatalf("expected 360 mortgage installments, got %d", len(resp.Schedules[2].Installments))
	}
	if resp.Schedules[0].RunID == resp.Schedules[1].RunID {
		t.Fatal("expected distinct run IDs")
	}
	if !strings.HasPrefix(resp.CSV, "loan,number") {
		t.Fatalf("expected CSV data in response, got %q", resp.CSV)
	}
	if resp.Duration == "" {
		t.Fatal("expected duration in response")
	}
}

func TestHandleScheduleJSONBody(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, "")

	body := `{"loans":[{"name":"json loan","principal":"1200","interestRate":"12","amortizationMethod":"equal_principal","startDate":"2025-01-01","numberOfRepayments":2,
	"compoundingMethod":"interest","compoundingDates":["2025-01-20"]}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/schedule", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp scheduleResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Schedules) != 1 || len(resp.Schedules[0].Installments) != 2 {
		t.Fatalf("unexpected schedules %+v", resp.Schedules)
	}
	if resp.Schedules[0].Installments[0].Principal != "600.00" {
		t.Fatalf("expected principal 600.00, got %s", resp.Schedules[0].Installments[0].Principal)
	}
	if len(resp.Schedules[0].UntriggeredCompoundingDates) != 1 {
		t.Fatalf("expected the untriggered compounding date to be reported")
	}
	if len(resp.Warnings) != 1 || !strings.Contains(resp.Warnings[0], "2025-01-20") {
		t.Fatalf("expected a compounding warning, got %v", resp.Warnings)
	}
}

func TestHandleScheduleMultipartUpload(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, "")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "test_config.yaml")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(fixture(t)); err != nil {
		t.Fatalf("failed to write form data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/schedule", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleScheduleMethodNotAllowed(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, "")

	req := httptest.NewRequest(http.MethodGet, "/api/schedule", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestHandleScheduleUploadTooLarge(t *testing.T) {
	handler := NewHandler(zap.NewNop(), configWithUploadLimit(t, 64), "")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "config.yaml")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(strings.Repeat("a", 128))); err != nil {
		t.Fatalf("failed to write oversized payload: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/schedule", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rr.Code)
	}
	if msg := decodeError(t, rr); !strings.Contains(msg, "upload exceeds limit") {
		t.Fatalf("expected upload limit error message, got %q", msg)
	}
}

func TestHandleScheduleMissingFile(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, "")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/schedule", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if msg := decodeError(t, rr); msg != "missing configuration file" {
		t.Fatalf("expected missing file error, got %q", msg)
	}
}

func TestHandleScheduleRejections(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		status      int
		errContains string
	}{
		{
			name:        "Empty body",
			body:        "",
			status:      http.StatusBadRequest,
			errContains: "empty configuration",
		},
		{
			name:        "Invalid YAML",
			body:        "loans: [",
			status:      http.StatusBadRequest,
			errContains: "error reading config data",
		},
		{
			name:        "No loans",
			body:        "logging:\n  level: info\n",
			status:      http.StatusBadRequest,
			errContains: "no loans",
		},
		{
			name: "Bad start date",
			body: `loans:
  - name: a
    principal: "1000"
    interestRate: "5"
    startDate: "01/01/2025"
    numberOfRepayments: 4
`,
			status:      http.StatusBadRequest,
			errContains: "invalid start date",
		},
		{
			name: "Balance driven negative",
			body: `loans:
  - name: a
    principal: "1000"
    interestRate: "5"
    startDate: "2025-01-01"
    numberOfRepayments: 4
    variations:
      - type: principal
        date: "2025-02-10"
        value: "-5000"
`,
			status:      http.StatusUnprocessableEntity,
			errContains: "failed to compute schedule",
		},
	}

	handler := NewHandler(zap.NewNop(), nil, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/schedule", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/yaml")

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			if msg := decodeError(t, rr); !strings.Contains(msg, tt.errContains) {
				t.Fatalf("expected error containing %q, got %q", tt.errContains, msg)
			}
		})
	}
}

func TestHandleScheduleTooManyLoans(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	cfg.MaxLoans = 2
	handler := NewHandler(zap.NewNop(), cfg, "")

	req := httptest.NewRequest(http.MethodPost, "/api/schedule", bytes.NewReader(fixture(t)))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if msg := decodeError(t, rr); !strings.Contains(msg, "the limit is 2") {
		t.Fatalf("expected loan limit error, got %q", msg)
	}
}

func TestHandleScheduleTimeout(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	cfg.SetTimeout(time.Nanosecond)
	handler := NewHandler(zap.NewNop(), cfg, "")

	req := httptest.NewRequest(http.MethodPost, "/api/schedule", bytes.NewReader(fixture(t)))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected status 504, got %d: %s", rr.Code, rr.Body.String())
	}
	if msg := decodeError(t, rr); !strings.Contains(msg, "deadline exceeded") {
		t.Fatalf("expected deadline error, got %q", msg)
	}
}

func TestHandleVersion(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		expected string
	}{
		{name: "Configured version", version: " v1.2.3 ", expected: "v1.2.3"},
		{name: "Default version", version: "", expected: "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(zap.NewNop(), nil, tt.version)

			req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rr.Code)
			}
			var resp map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp["version"] != tt.expected {
				t.Fatalf("expected version %q, got %q", tt.expected, resp["version"])
			}
		})
	}

	handler := NewHandler(zap.NewNop(), nil, "")
	req := httptest.NewRequest(http.MethodPost, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}
