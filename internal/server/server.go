package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/iwvelando/loan-schedule/internal/schedule"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/output"
	"go.uber.org/zap"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	timeout       time.Duration
	maxLoans      int
	version       string
}

// NewHandler constructs the HTTP handler that serves the schedule API. A nil cfg
// uses the defaults.
func NewHandler(logger *zap.Logger, cfg *Config, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: constants.DefaultMaxUploadSizeBytes,
		timeout:       constants.DefaultRequestTimeout,
		maxLoans:      constants.DefaultMaxLoansPerRequest,
		version:       strings.TrimSpace(version),
	}
	if cfg != nil {
		if cfg.UploadSizeBytes() > 0 {
			h.maxUploadSize = cfg.UploadSizeBytes()
		}
		if cfg.Timeout() > 0 {
			h.timeout = cfg.Timeout()
		}
		if cfg.MaxLoans > 0 {
			h.maxLoans = cfg.MaxLoans
		}
	}
	if h.version == "" {
		h.version = "dev"
	}

	mux := http.NewServeMux()

	// Schedule API endpoint (YAML or JSON body, or a multipart file upload)
	mux.HandleFunc("/api/schedule", h.handleSchedule)

	// Version endpoint
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

// Serve runs the schedule API on cfg.Address until ctx is cancelled.
func Serve(ctx context.Context, logger *zap.Logger, cfg *Config, version string) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           NewHandler(logger, cfg, version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("schedule API listening",
			zap.String("op", "server.Serve"),
			zap.String("address", cfg.Address),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type scheduleResponse struct {
	Schedules []output.ScheduleDocument `json:"schedules"`
	CSV       string                    `json:"csv"`
	Warnings  []string                  `json:"warnings,omitempty"`
	Duration  string                    `json:"duration"`
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	body, configType, err := h.readConfiguration(r)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	conf, err := config.ParseConfiguration(bytes.NewReader(body), configType)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err), op)
		return
	}
	if err := conf.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	if len(conf.Loans) > h.maxLoans {
		h.respondError(w, http.StatusBadRequest,
			fmt.Sprintf("request has %d loans, the limit is %d", len(conf.Loans), h.maxLoans), op)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	results, err := schedule.GetSchedules(ctx, h.logger, *conf)
	if err != nil {
		h.respondError(w, statusFor(err), fmt.Sprintf("failed to compute schedule: %v", err), op)
		return
	}

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, results); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, scheduleResponse{
		Schedules: output.Documents(results),
		CSV:       csvBuf.String(),
		Warnings:  conf.ValidateConfiguration(),
		Duration:  time.Since(start).String(),
	})
}

// readConfiguration returns the request's configuration document and its
// type. JSON bodies are detected by content type; anything else is YAML.
func (h *handler) readConfiguration(r *http.Request) ([]byte, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var src io.Reader = r.Body
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			return nil, "", fmt.Errorf("failed to parse upload: %w", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("missing configuration file")
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				h.logger.Warn("failed to close uploaded file",
					zap.String("op", "server.readConfiguration"),
					zap.Error(closeErr),
				)
			}
		}()
		src = file
		if strings.HasSuffix(strings.ToLower(header.Filename), ".json") {
			mediaType = "application/json"
		}
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, src); err != nil {
		return nil, "", err
	}
	if buf.Len() == 0 {
		return nil, "", fmt.Errorf("empty configuration")
	}

	if mediaType == "application/json" {
		return buf.Bytes(), "json", nil
	}
	return buf.Bytes(), "yaml", nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, loans.ErrBrokenInvariant):
		return http.StatusInternalServerError
	case errors.Is(err, loans.ErrInvalidTerms),
		errors.Is(err, loans.ErrInvalidVariation),
		errors.Is(err, loans.ErrNegativeBalance):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, zap.String("op", op), zap.Int("status", status))
	} else {
		h.logger.Warn(msg, zap.String("op", op), zap.Int("status", status))
	}
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
