package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/prefeitura-rio/app-cadastro/internal/observability"
	"github.com/prefeitura-rio/app-cadastro/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handlers) renderReport(c *gin.Context, status int, sessionID string, report *services.Report) {
	view := report.View()

	data := newPageData(PageDownload, sessionID)
	data.Report = &view
	c.HTML(status, "download.html", data)
}

func (h *Handlers) reportFor(sessionID string) (*services.Report, string) {
	if report, ok := services.SessionController[*services.Report](h.sessions, sessionID); ok {
		return report, sessionID
	}
	report := services.NewReport(h.backend, h.cfg.ReportGenerateCooldown)
	return report, h.sessions.Open(report)
}

// DownloadPage renders the report page
func (h *Handlers) DownloadPage(c *gin.Context) {
	_, span := otel.Tracer("").Start(c.Request.Context(), "DownloadPage")
	defer span.End()

	report, sessionID := h.reportFor("")
	h.renderReport(c, http.StatusOK, sessionID, report)
}

// GenerateReport asks the backend to build the CSV report
func (h *Handlers) GenerateReport(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "GenerateReport")
	defer span.End()

	report, sessionID := h.reportFor(c.PostForm("sessao"))
	err := report.Generate(ctx)
	h.renderReport(c, statusFor(err), sessionID, report)
}

// DownloadReport navigates to the report once the backend confirms it
// exists; otherwise the page shows why it cannot be downloaded
func (h *Handlers) DownloadReport(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "DownloadReport")
	defer span.End()

	report, sessionID := h.reportFor(c.PostForm("sessao"))
	url, err := report.Download(ctx)
	if err != nil {
		h.renderReport(c, statusFor(err), sessionID, report)
		return
	}
	c.Redirect(http.StatusSeeOther, url)
}

// ExportXLSX godoc
// @Summary Exporta o relatório em XLSX
// @Description Converte o relatório CSV gerado pelo backend em uma planilha XLSX com CPF, telefone e CEP formatados.
// @Tags relatorio
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse "Relatório ainda não gerado"
// @Failure 502 {object} ErrorResponse "Falha no backend"
// @Router /download-csv/arquivo.xlsx [get]
func (h *Handlers) ExportXLSX(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ExportXLSX")
	defer span.End()

	var buf bytes.Buffer
	if err := h.exporter.WriteXLSX(ctx, &buf); err != nil {
		observability.Logger().Warn("failed to export report", zap.Error(err))
		status := statusFor(err)
		msg := services.MsgReportDownloadFailed
		if status == http.StatusNotFound {
			msg = services.MsgReportNotFound
		}
		c.JSON(status, ErrorResponse{Error: msg})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="pessoas.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
