package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prefeitura-rio/app-cadastro/internal/config"
	"github.com/prefeitura-rio/app-cadastro/internal/logging"
	"github.com/prefeitura-rio/app-cadastro/internal/models"
	"github.com/prefeitura-rio/app-cadastro/internal/observability"
	"github.com/prefeitura-rio/app-cadastro/internal/utils"
	"github.com/prefeitura-rio/app-cadastro/internal/utils/httpclient"
)

// Backend API paths
const (
	pathPessoas           = "/api/pessoas"
	pathCEP               = "/api/cep/"
	pathAuditoriaRecentes = "/api/auditoria/recentes"
	pathAuditoriaStats    = "/api/auditoria/estatisticas"
	pathAuditoriaEndpoint = "/api/auditoria/endpoint"
	pathRelatorioCSV      = "/api/relatorios/csv"
	pathRelatorioDownload = "/api/relatorios/download"
)

// maxErrorBody bounds how much of an error response is read for its message
const maxErrorBody = 64 << 10

// BackendClient talks to the registration REST API. Every call is a single
// attempt; failures are returned to the caller untouched.
type BackendClient struct {
	baseURL     string
	downloadURL string
	pool        *httpclient.HTTPClientPool
	logger      *logging.SafeLogger
}

// NewBackendClient creates a client for cfg.APIBaseURL
func NewBackendClient(cfg *config.Config, logger *logging.SafeLogger) *BackendClient {
	downloadURL := cfg.ReportDownloadURL
	if downloadURL == "" {
		downloadURL = cfg.APIBaseURL + pathRelatorioDownload
	}
	return &BackendClient{
		baseURL:     strings.TrimRight(cfg.APIBaseURL, "/"),
		downloadURL: downloadURL,
		pool:        httpclient.NewHTTPClientPool(cfg.HTTPClientPool, cfg.BackendTimeout),
		logger:      logger.Named("backend"),
	}
}

// Close releases pooled connections
func (c *BackendClient) Close() {
	c.pool.Close()
}

// ReportDownloadURL is the browser-facing URL of the generated report
func (c *BackendClient) ReportDownloadURL() string {
	return c.downloadURL
}

// do sends one request. When out is non-nil a 2xx body is decoded into it.
func (c *BackendClient) do(ctx context.Context, operation, method, path string, body, out interface{}) (int, error) {
	ctx, span := utils.TraceExternalService(ctx, "backend", operation)
	defer span.End()
	start := time.Now()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal %s request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.pool.Do(req)
	observability.BackendDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.BackendRequests.WithLabelValues(operation, "transport_error").Inc()
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"http.method": method})
		c.logger.Warn("backend request failed",
			zap.String("operation", operation),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return 0, fmt.Errorf("%s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	observability.BackendRequests.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()
	utils.AddSpanAttribute(span, "http.status_code", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
		utils.RecordErrorInSpan(span, apiErr, nil)
		c.logger.Warn("backend returned error status",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return resp.StatusCode, apiErr
	}

	if out != nil && method != http.MethodHead {
		// an empty body leaves out untouched
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			utils.RecordErrorInSpan(span, err, nil)
			return resp.StatusCode, fmt.Errorf("failed to decode %s response: %w: %v", operation, ErrInvalidPayload, err)
		}
	}

	return resp.StatusCode, nil
}

// readErrorMessage extracts "message" or "error" from a JSON error body,
// falling back to short plain text bodies
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Error
	}

	text := strings.TrimSpace(string(data))
	if len(text) > 200 || strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}

// withSentinel attaches a domain sentinel to a 404 APIError
func withSentinel(err error, sentinel error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		apiErr.Err = sentinel
	}
	return err
}

// ListPeople returns every person. A null or non-array body is
// ErrInvalidPayload, never an empty list.
func (c *BackendClient) ListPeople(ctx context.Context) ([]models.Pessoa, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, "list_people", http.MethodGet, pathPessoas, nil, &raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("list people: %w", ErrInvalidPayload)
	}

	people := []models.Pessoa{}
	if err := json.Unmarshal(trimmed, &people); err != nil {
		return nil, fmt.Errorf("list people: %w: %v", ErrInvalidPayload, err)
	}
	return people, nil
}

// GetPerson fetches one person by ID
func (c *BackendClient) GetPerson(ctx context.Context, id int64) (*models.Pessoa, error) {
	var p models.Pessoa
	if _, err := c.do(ctx, "get_person", http.MethodGet, pathPessoas+"/"+strconv.FormatInt(id, 10), nil, &p); err != nil {
		return nil, withSentinel(err, models.ErrPersonNotFound)
	}
	return &p, nil
}

// CreatePerson posts a new person
func (c *BackendClient) CreatePerson(ctx context.Context, p models.Pessoa) (*models.Pessoa, error) {
	var created models.Pessoa
	if _, err := c.do(ctx, "create_person", http.MethodPost, pathPessoas, p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePerson replaces the person with the given ID
func (c *BackendClient) UpdatePerson(ctx context.Context, id int64, p models.Pessoa) (*models.Pessoa, error) {
	var updated models.Pessoa
	if _, err := c.do(ctx, "update_person", http.MethodPut, pathPessoas+"/"+strconv.FormatInt(id, 10), p, &updated); err != nil {
		return nil, withSentinel(err, models.ErrPersonNotFound)
	}
	return &updated, nil
}

// DeletePerson deletes the person with the given ID
func (c *BackendClient) DeletePerson(ctx context.Context, id int64) error {
	if _, err := c.do(ctx, "delete_person", http.MethodDelete, pathPessoas+"/"+strconv.FormatInt(id, 10), nil, nil); err != nil {
		return withSentinel(err, models.ErrPersonNotFound)
	}
	return nil
}

// LookupCEP resolves a canonical 8-digit postal code
func (c *BackendClient) LookupCEP(ctx context.Context, cep string) (models.AddressFragment, error) {
	var frag models.AddressFragment
	if _, err := c.do(ctx, "lookup_cep", http.MethodGet, pathCEP+url.PathEscape(cep), nil, &frag); err != nil {
		return models.AddressFragment{}, withSentinel(err, models.ErrCEPNotFound)
	}
	return frag, nil
}

// RecentAudits lists audit records of the last hours
func (c *BackendClient) RecentAudits(ctx context.Context, hours int) ([]models.AuditRecord, error) {
	records := []models.AuditRecord{}
	path := pathAuditoriaRecentes + "?horas=" + strconv.Itoa(hours)
	if _, err := c.do(ctx, "recent_audits", http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// AuditStatistics aggregates audit records of the last hours
func (c *BackendClient) AuditStatistics(ctx context.Context, hours int) (*models.AuditStats, error) {
	var stats models.AuditStats
	path := pathAuditoriaStats + "?horas=" + strconv.Itoa(hours)
	if _, err := c.do(ctx, "audit_statistics", http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// AuditsByEndpoint lists audit records for one API endpoint
func (c *BackendClient) AuditsByEndpoint(ctx context.Context, endpoint string) ([]models.AuditRecord, error) {
	records := []models.AuditRecord{}
	path := pathAuditoriaEndpoint + "?" + url.Values{"endpoint": {endpoint}}.Encode()
	if _, err := c.do(ctx, "audits_by_endpoint", http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GenerateReport asks the backend to build the CSV report asynchronously
func (c *BackendClient) GenerateReport(ctx context.Context) error {
	_, err := c.do(ctx, "generate_report", http.MethodPost, pathRelatorioCSV, nil, nil)
	return err
}

// CheckReport verifies that the report file exists. It tries HEAD and falls
// back to GET when the backend does not allow HEAD.
func (c *BackendClient) CheckReport(ctx context.Context) error {
	status, err := c.do(ctx, "check_report", http.MethodHead, pathRelatorioDownload, nil, nil)
	if status == http.StatusMethodNotAllowed {
		c.logger.Debug("HEAD not allowed on report download, falling back to GET")
		_, err = c.do(ctx, "check_report", http.MethodGet, pathRelatorioDownload, nil, nil)
	}
	return withSentinel(err, models.ErrReportNotFound)
}

// DownloadReport streams the report CSV. The caller closes the reader.
func (c *BackendClient) DownloadReport(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathRelatorioDownload, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.pool.Do(req)
	if err != nil {
		observability.BackendRequests.WithLabelValues("download_report", "transport_error").Inc()
		return nil, fmt.Errorf("download_report request failed: %w", err)
	}
	observability.BackendRequests.WithLabelValues("download_report", strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, withSentinel(&APIError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}, models.ErrReportNotFound)
	}
	return resp.Body, nil
}
