package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/prefeitura-rio/app-cadastro/internal/logging"
	"github.com/prefeitura-rio/app-cadastro/internal/models"
	"github.com/prefeitura-rio/app-cadastro/internal/observability"
	"github.com/prefeitura-rio/app-cadastro/internal/utils"
)

// Messages shown by the audit page
const (
	MsgAuditLoadFailed   = "Erro ao carregar dados de auditoria"
	MsgAuditFilterFailed = "Erro ao filtrar auditorias"
)

// Audit window bounds, in hours
const (
	DefaultAuditHours = 24
	MinAuditHours     = 1
	MaxAuditHours     = 168
)

const auditTimestampLayout = "02/01/2006 15:04:05"

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// AuditBackend is the part of the backend the audit page needs
type AuditBackend interface {
	RecentAudits(ctx context.Context, hours int) ([]models.AuditRecord, error)
	AuditStatistics(ctx context.Context, hours int) (*models.AuditStats, error)
	AuditsByEndpoint(ctx context.Context, endpoint string) ([]models.AuditRecord, error)
}

// AuditRow is one rendered audit record
type AuditRow struct {
	Record      models.AuditRecord
	Timestamp   string
	StatusClass string
	Tempo       string
	Erro        string
}

// StatusRow is one rendered entry of the status distribution
type StatusRow struct {
	Status      int
	Count       string
	StatusClass string
}

// AuditView is a consistent snapshot for rendering
type AuditView struct {
	Hours       int
	Endpoint    string
	Rows        []AuditRow
	Stats       *models.AuditStats
	Total       string
	StatusRows  []StatusRow
	Error       string
	RecordCount string
}

// Audit shows recent backend API calls and their statistics
type Audit struct {
	api    AuditBackend
	logger *logging.SafeLogger

	mu       sync.Mutex
	hours    int
	endpoint string
	records  []models.AuditRecord
	stats    *models.AuditStats
	errMsg   string

	detached atomic.Bool
}

// NewAudit creates an audit controller for the default window
func NewAudit(api AuditBackend) *Audit {
	return &Audit{
		api:    api,
		hours:  DefaultAuditHours,
		logger: observability.Logger().Named("audit"),
	}
}

// ClampHours bounds the window to MinAuditHours..MaxAuditHours; zero means
// the default window
func ClampHours(hours int) int {
	switch {
	case hours == 0:
		return DefaultAuditHours
	case hours < MinAuditHours:
		return MinAuditHours
	case hours > MaxAuditHours:
		return MaxAuditHours
	default:
		return hours
	}
}

// Load fetches recent records and statistics for the window concurrently
func (a *Audit) Load(ctx context.Context, hours int) error {
	hours = ClampHours(hours)

	ctx, span := utils.TraceBusinessLogic(ctx, "load_audit")
	defer span.End()
	utils.AddSpanAttribute(span, "audit.hours", hours)

	var (
		records []models.AuditRecord
		stats   *models.AuditStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = a.api.RecentAudits(gctx, hours)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = a.api.AuditStatistics(gctx, hours)
		return err
	})
	err := g.Wait()

	if a.detached.Load() {
		return ErrSessionClosed
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.hours = hours
	a.endpoint = ""

	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		a.logger.Warn("failed to load audit data", zap.Int("hours", hours), zap.Error(err))
		a.errMsg = MsgAuditLoadFailed
		return fmt.Errorf("load audit: %w", err)
	}

	a.records = records
	a.stats = stats
	a.errMsg = ""
	return nil
}

// FilterByEndpoint lists records for one endpoint; a blank filter reloads
// the current window
func (a *Audit) FilterByEndpoint(ctx context.Context, endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		a.mu.Lock()
		hours := a.hours
		a.mu.Unlock()
		return a.Load(ctx, hours)
	}

	ctx, span := utils.TraceBusinessLogic(ctx, "filter_audit")
	defer span.End()

	records, err := a.api.AuditsByEndpoint(ctx, endpoint)
	if a.detached.Load() {
		return ErrSessionClosed
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.endpoint = endpoint

	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		a.logger.Warn("failed to filter audit data", zap.String("endpoint", endpoint), zap.Error(err))
		a.errMsg = MsgAuditFilterFailed
		return fmt.Errorf("filter audit: %w", err)
	}

	a.records = records
	a.errMsg = ""
	return nil
}

// Detach marks the page as gone; later results are dropped
func (a *Audit) Detach() {
	a.detached.Store(true)
}

// Detached reports whether the page was closed
func (a *Audit) Detached() bool {
	return a.detached.Load()
}

// View returns a snapshot for rendering
func (a *Audit) View() AuditView {
	a.mu.Lock()
	defer a.mu.Unlock()

	v := AuditView{
		Hours:       a.hours,
		Endpoint:    a.endpoint,
		Stats:       a.stats,
		Error:       a.errMsg,
		RecordCount: FormatCount(int64(len(a.records))),
	}

	v.Rows = make([]AuditRow, 0, len(a.records))
	for _, r := range a.records {
		row := AuditRow{
			Record:      r,
			Timestamp:   FormatAuditTimestamp(r),
			StatusClass: StatusClass(r.StatusResposta),
			Tempo:       FormatProcessingTime(r.TempoProcessamento),
		}
		if r.HasError() {
			row.Erro = *r.Erro
		}
		v.Rows = append(v.Rows, row)
	}

	if a.stats != nil {
		v.Total = FormatCount(a.stats.TotalRequisicoes)
		for _, sc := range a.stats.SortedDistribution() {
			v.StatusRows = append(v.StatusRows, StatusRow{
				Status:      sc.Status,
				Count:       FormatCount(sc.Count),
				StatusClass: StatusClass(sc.Status),
			})
		}
	}
	return v
}

// StatusClass maps an HTTP status to a display class
func StatusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "success"
	case status >= 300 && status < 400:
		return "info"
	case status >= 400 && status < 500:
		return "warning"
	default:
		return "error"
	}
}

// FormatProcessingTime renders milliseconds as "850ms" below one second and
// as seconds with two decimals ("1.50s") otherwise
func FormatProcessingTime(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return decimal.NewFromInt(ms).Div(decimal.NewFromInt(1000)).StringFixed(2) + "s"
}

// FormatAuditTimestamp renders the request time as dd/mm/yyyy hh:mm:ss, or
// the raw value when it cannot be parsed
func FormatAuditTimestamp(r models.AuditRecord) string {
	t, ok := r.Timestamp()
	if !ok {
		return r.TimestampRequisicao
	}
	return t.Format(auditTimestampLayout)
}

// FormatCount renders n with pt-BR digit grouping
func FormatCount(n int64) string {
	return ptBR.Sprintf("%d", n)
}
