package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prefeitura-rio/app-cadastro/internal/config"
	"github.com/prefeitura-rio/app-cadastro/internal/logging"
	"github.com/prefeitura-rio/app-cadastro/internal/models"
	"github.com/prefeitura-rio/app-cadastro/internal/redisclient"
	"github.com/prefeitura-rio/app-cadastro/internal/services"
)

// MsgInvalidPersonID is shown when a person route carries a malformed ID
const MsgInvalidPersonID = "ID de pessoa inválido"

// Backend is the backend API as used by the pages
type Backend interface {
	services.PersonFormBackend
	services.PersonListBackend
	services.ReportBackend
	services.AuditBackend
	services.ReportSource
}

// Handlers serves the pages and their JSON helpers. Every page render opens
// a page session holding the controller of that page.
type Handlers struct {
	cfg      *config.Config
	backend  Backend
	resolver *services.CEPResolver
	exporter *services.ReportExporter
	sessions *services.PageSessions
	redis    *redisclient.Client
	logger   *logging.SafeLogger
}

// NewHandlers wires the page handlers. redis may be nil.
func NewHandlers(cfg *config.Config, backend Backend, resolver *services.CEPResolver, sessions *services.PageSessions, redis *redisclient.Client, logger *logging.SafeLogger) *Handlers {
	return &Handlers{
		cfg:      cfg,
		backend:  backend,
		resolver: resolver,
		exporter: services.NewReportExporter(backend),
		sessions: sessions,
		redis:    redis,
		logger:   logger.Named("handlers"),
	}
}

type alerts struct {
	Error      string
	Success    string
	SuccessTTL time.Duration
}

// pageData is the root value of every page template
type pageData struct {
	Title         string
	Nav           []navItem
	SessionID     string
	RedirectTo    string
	RedirectAfter time.Duration
	Alerts        alerts

	// registration form
	Form       *services.FormView
	Action     string
	LookupPath string

	// list
	List           *services.ListView
	FormPath       string
	NoPeople       string
	FirstPersonCTA string

	Report *services.ReportView
	Audit  *services.AuditView
}

func newPageData(page Page, sessionID string) pageData {
	return pageData{
		Title:     page.Title(),
		Nav:       navFor(page),
		SessionID: sessionID,
	}
}

// statusFor maps a controller error to the status of the rendered page
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrIncompleteCEP):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrCooldown):
		return http.StatusTooManyRequests
	case errors.Is(err, services.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, services.ErrNoPendingDelete), errors.Is(err, models.ErrInvalidPersonID):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrPersonNotFound), errors.Is(err, models.ErrReportNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func parsePersonID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, models.ErrInvalidPersonID
	}
	return id, nil
}

// optionalID parses an optional positive ID form value
func optionalID(raw string) *int64 {
	id, err := parsePersonID(raw)
	if err != nil {
		return nil
	}
	return &id
}

// HomeRedirect sends the root path to the registration page
func (h *Handlers) HomeRedirect(c *gin.Context) {
	c.Redirect(http.StatusFound, PageCadastro.Path())
}
