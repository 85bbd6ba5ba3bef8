package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/prefeitura-rio/app-cadastro/internal/services"
)

// AuditPage renders recent backend API calls. horas selects the window
// (1 to 168, default 24); endpoint filters by API endpoint.
func (h *Handlers) AuditPage(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "AuditPage")
	defer span.End()

	hours, _ := strconv.Atoi(c.Query("horas"))
	endpoint := c.Query("endpoint")
	span.SetAttributes(
		attribute.Int("audit.hours", services.ClampHours(hours)),
		attribute.String("audit.endpoint", endpoint),
	)

	sessionID := c.Query("sessao")
	audit, ok := services.SessionController[*services.Audit](h.sessions, sessionID)

	var err error
	switch {
	case ok && endpoint != "":
		err = audit.FilterByEndpoint(ctx, endpoint)
	case ok:
		err = audit.Load(ctx, hours)
	default:
		audit = services.NewAudit(h.backend)
		sessionID = h.sessions.Open(audit)
		err = audit.Load(ctx, hours)
		if err == nil && endpoint != "" {
			err = audit.FilterByEndpoint(ctx, endpoint)
		}
	}

	view := audit.View()
	data := newPageData(PageAuditoria, sessionID)
	data.Audit = &view

	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
	}
	c.HTML(status, "auditoria.html", data)
}
