package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/prefeitura-rio/app-cadastro/internal/observability"
	"github.com/prefeitura-rio/app-cadastro/internal/services"
	"github.com/prefeitura-rio/app-cadastro/internal/utils"
)

const msgSessionNotFound = "sessão de página não encontrada"

// LookupCEP godoc
// @Summary Busca endereço pelo CEP
// @Description Atualiza o CEP do formulário da sessão de página e, quando o CEP muda para 8 dígitos, preenche bairro, município e estado. Um CEP igual ao anterior ou resultados de buscas substituídas por outra mais recente voltam com applied=false, sem nova busca.
// @Tags cep
// @Produce json
// @Param session path string true "ID da sessão de página"
// @Param cep path string true "CEP com ou sem máscara"
// @Success 200 {object} CEPLookupResponse
// @Failure 404 {object} ErrorResponse "Sessão não encontrada"
// @Failure 410 {object} ErrorResponse "Página fechada"
// @Failure 422 {object} ErrorResponse "CEP incompleto"
// @Router /sessao/{session}/cep/{cep} [get]
func (h *Handlers) LookupCEP(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "LookupCEP")
	defer span.End()

	logger := observability.Logger()
	sessionID := c.Param("session")
	span.SetAttributes(attribute.String("page.session", sessionID))

	form, ok := services.SessionController[*services.PersonForm](h.sessions, sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msgSessionNotFound})
		return
	}

	ready, err := form.SetField(services.FieldCEP, c.Param("cep"))
	if err != nil || !utils.IsComplete(utils.FieldCEP, form.CurrentCEP()) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "CEP deve ter 8 dígitos"})
		return
	}
	if !ready {
		// same CEP as the last lookup; its result is already on the form
		span.SetAttributes(attribute.Bool("lookup.repeated", true))
		c.JSON(http.StatusOK, CEPLookupResponse{Applied: false})
		return
	}

	result, err := form.LookupCEP(ctx)
	if err != nil {
		status := statusFor(err)
		if errors.Is(err, services.ErrSessionClosed) {
			logger.Debug("lookup result dropped for closed page", zap.String("session", sessionID))
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	span.SetAttributes(attribute.Bool("lookup.applied", result.Applied))
	c.JSON(http.StatusOK, CEPLookupResponse{
		Applied:   result.Applied,
		Bairro:    result.Address.Bairro,
		Municipio: result.Address.Municipio,
		Estado:    result.Address.Estado,
		Error:     result.Error,
	})
}

// CloseSession godoc
// @Summary Encerra a sessão de página
// @Description Chamado quando a página é fechada ou trocada; resultados assíncronos pendentes da página são descartados.
// @Tags sessao
// @Param session path string true "ID da sessão de página"
// @Success 204
// @Failure 404 {object} ErrorResponse "Sessão não encontrada"
// @Router /sessao/{session} [delete]
func (h *Handlers) CloseSession(c *gin.Context) {
	_, span := otel.Tracer("").Start(c.Request.Context(), "CloseSession")
	defer span.End()

	if !h.sessions.Close(c.Param("session")) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msgSessionNotFound})
		return
	}
	c.Status(http.StatusNoContent)
}
