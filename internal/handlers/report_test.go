package handlers

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/prefeitura-rio/app-cadastro/internal/services"
)

func TestDownloadPage(t *testing.T) {
	router, api, _ := setupRouterTest(t)

	w := doRequest(router, http.MethodGet, "/download-csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Gerar Relatório")
	assert.Contains(t, w.Body.String(), "Baixar CSV")
	assert.Empty(t, api.log())
}

func TestReportFlow(t *testing.T) {
	router, api, _ := setupRouterTest(t)
	session := sessionOf(t, doRequest(router, http.MethodGet, "/download-csv", nil).Body.String())

	early := doRequest(router, http.MethodPost, "/download-csv/baixar", url.Values{"sessao": {session}})
	assert.Equal(t, http.StatusNotFound, early.Code)
	assert.Contains(t, early.Body.String(), services.MsgReportNotFound)

	gen := doRequest(router, http.MethodPost, "/download-csv/gerar", url.Values{"sessao": {session}})
	require.Equal(t, http.StatusOK, gen.Code)
	assert.Contains(t, gen.Body.String(), services.MsgReportGenerating)
	assert.Contains(t, gen.Body.String(), "disabled data-enable-after=")

	again := doRequest(router, http.MethodPost, "/download-csv/gerar", url.Values{"sessao": {session}})
	assert.Equal(t, http.StatusTooManyRequests, again.Code)

	w := doRequest(router, http.MethodPost, "/download-csv/baixar", url.Values{"sessao": {session}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/api/relatorios/download")

	assert.Equal(t, 1, countOf(api.log(), "POST /api/relatorios/csv"), "cooldown blocks the second request")
}

func TestExportXLSX(t *testing.T) {
	router, api, _ := setupRouterTest(t)

	missing := doRequest(router, http.MethodGet, "/download-csv/arquivo.xlsx", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Contains(t, missing.Body.String(), services.MsgReportNotFound)

	api.mu.Lock()
	api.reportReady = true
	api.mu.Unlock()

	w := doRequest(router, http.MethodGet, "/download-csv/arquivo.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "pessoas.xlsx")

	book, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer book.Close()

	name, err := book.GetCellValue("Pessoas", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Ana", name)
}

func countOf(lines []string, want string) int {
	n := 0
	for _, l := range lines {
		if l == want {
			n++
		}
	}
	return n
}
