package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/prefeitura-rio/app-cadastro/internal/observability"
	"github.com/prefeitura-rio/app-cadastro/internal/utils"
)

// HealthCheck godoc
// @Summary Verifica a saúde do front-end
// @Description Informa o estado do serviço e do cache de CEP. O cache é opcional: uma falha no Redis deixa o serviço degradado, não indisponível.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *Handlers) HealthCheck(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "HealthCheck")
	defer span.End()

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services: map[string]string{
			"redis": "disabled",
		},
	}

	if h.redis != nil {
		_, redisSpan := utils.TraceExternalService(ctx, "redis", "ping")
		if err := h.redis.Ping(ctx).Err(); err != nil {
			utils.RecordErrorInSpan(redisSpan, err, map[string]interface{}{
				"service.name":      "redis",
				"service.operation": "ping",
			})
			observability.Logger().Warn("redis health check failed", zap.Error(err))
			health.Status = "degraded"
			health.Services["redis"] = "unhealthy"
		} else {
			health.Services["redis"] = "healthy"
		}
		redisSpan.End()
	}

	span.SetAttributes(
		attribute.String("health.status", health.Status),
		attribute.String("health.redis", health.Services["redis"]),
		attribute.Int("health.page_sessions", h.sessions.Len()),
	)

	c.JSON(http.StatusOK, health)
}
