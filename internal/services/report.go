package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/prefeitura-rio/app-cadastro/internal/logging"
	"github.com/prefeitura-rio/app-cadastro/internal/observability"
	"github.com/prefeitura-rio/app-cadastro/internal/utils"
)

// Messages shown by the report page
const (
	MsgReportGenerating     = "Relatório sendo gerado. Aguarde alguns segundos e tente baixar novamente."
	MsgReportGenerateFailed = "Erro ao solicitar geração do relatório"
	MsgReportNotFound       = "Arquivo não encontrado. Gere o relatório primeiro."
	MsgReportServerError    = "Erro no servidor. Tente novamente mais tarde."
	MsgReportDownloadFailed = "Erro ao baixar o relatório"
)

// ReportState is the state of a Report controller
type ReportState int

const (
	ReportIdle ReportState = iota
	ReportGenerating
	ReportDownloadChecking
)

func (s ReportState) String() string {
	switch s {
	case ReportIdle:
		return "idle"
	case ReportGenerating:
		return "generating"
	case ReportDownloadChecking:
		return "download_checking"
	default:
		return "unknown"
	}
}

// ReportBackend is the part of the backend the report page needs
type ReportBackend interface {
	GenerateReport(ctx context.Context) error
	CheckReport(ctx context.Context) error
	ReportDownloadURL() string
}

// ReportView is a consistent snapshot for rendering
type ReportView struct {
	State            ReportState
	Message          string
	IsError          bool
	GenerateDisabled bool
	// CooldownLeft is how long the generate action stays disabled
	CooldownLeft time.Duration
}

// Report triggers CSV generation and guards the download behind an
// existence check
type Report struct {
	api      ReportBackend
	cooldown time.Duration
	now      func() time.Time
	logger   *logging.SafeLogger

	mu            sync.Mutex
	state         ReportState
	message       string
	isError       bool
	cooldownUntil time.Time

	detached atomic.Bool
}

// NewReport creates an idle report controller
func NewReport(api ReportBackend, cooldown time.Duration) *Report {
	return &Report{
		api:      api,
		cooldown: cooldown,
		now:      time.Now,
		logger:   observability.Logger().Named("report"),
	}
}

// Generate asks the backend to build the report. The action is then
// disabled for the cooldown; this does not track backend completion.
func (r *Report) Generate(ctx context.Context) error {
	ctx, span := utils.TraceBusinessLogic(ctx, "generate_report")
	defer span.End()

	r.mu.Lock()
	if r.state != ReportIdle || r.now().Before(r.cooldownUntil) {
		r.mu.Unlock()
		return ErrCooldown
	}
	prevMessage, prevIsError := r.message, r.isError
	r.state = ReportGenerating
	r.message = ""
	r.mu.Unlock()

	err := r.api.GenerateReport(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = ReportIdle
	if r.detached.Load() {
		r.message, r.isError = prevMessage, prevIsError
		return ErrSessionClosed
	}
	r.cooldownUntil = r.now().Add(r.cooldown)

	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		r.logger.Warn("failed to request report generation", zap.Error(err))
		r.message = MsgReportGenerateFailed
		r.isError = true
		return fmt.Errorf("generate report: %w", err)
	}

	r.message = MsgReportGenerating
	r.isError = false
	return nil
}

// Download checks that the report exists and returns the URL to navigate
// to. On failure the URL is empty and a status specific message is set.
func (r *Report) Download(ctx context.Context) (string, error) {
	ctx, span := utils.TraceBusinessLogic(ctx, "download_report")
	defer span.End()

	r.mu.Lock()
	prevMessage, prevIsError := r.message, r.isError
	r.state = ReportDownloadChecking
	r.message = ""
	r.isError = false
	r.mu.Unlock()

	err := r.api.CheckReport(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = ReportIdle
	if r.detached.Load() {
		r.message, r.isError = prevMessage, prevIsError
		return "", ErrSessionClosed
	}

	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		r.logger.Info("report download check failed", zap.Int("status", StatusCode(err)), zap.Error(err))
		r.message = downloadMessage(err)
		r.isError = true
		return "", fmt.Errorf("download report: %w", err)
	}

	return r.api.ReportDownloadURL(), nil
}

func downloadMessage(err error) string {
	switch StatusCode(err) {
	case http.StatusNotFound:
		return MsgReportNotFound
	case http.StatusInternalServerError:
		return MsgReportServerError
	default:
		return MsgReportDownloadFailed
	}
}

// Detach marks the page as gone; results of pending calls are dropped
func (r *Report) Detach() {
	r.detached.Store(true)
}

// Detached reports whether the page was closed
func (r *Report) Detached() bool {
	return r.detached.Load()
}

// View returns a snapshot for rendering
func (r *Report) View() ReportView {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := ReportView{
		State:   r.state,
		Message: r.message,
		IsError: r.isError,
	}
	if left := r.cooldownUntil.Sub(r.now()); left > 0 {
		v.GenerateDisabled = true
		v.CooldownLeft = left
	}
	if r.state == ReportGenerating {
		v.GenerateDisabled = true
	}
	return v
}
