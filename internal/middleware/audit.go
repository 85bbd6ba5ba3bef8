package middleware

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prefeitura-rio/app-cadastro/internal/observability"
)

// AuditMiddleware logs every write request issued from the pages (form
// submits, deletes, report actions). CPF and telephone values are masked
// before they reach the log.
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != "POST" && method != "PUT" && method != "DELETE" && method != "PATCH" {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/metrics") {
			c.Next()
			return
		}

		// ParseForm consumes the body; handlers read it back through c.PostForm
		var form url.Values
		if err := c.Request.ParseForm(); err == nil {
			form = c.Request.PostForm
		}

		c.Next()

		fields := []zap.Field{
			zap.String("action", mapHTTPMethodToAction(method)),
			zap.String("resource", extractResourceFromPath(path)),
			zap.String("resource_id", c.Param("id")),
			zap.String("method", method),
			zap.String("endpoint", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip_address", c.ClientIP()),
		}
		if len(form) > 0 {
			fields = append(fields, zap.Any("form", observability.MaskForm(form)))
		}

		LoggerFrom(c).Info("audit event", fields...)
	}
}

// mapHTTPMethodToAction maps HTTP methods to audit actions
func mapHTTPMethodToAction(method string) string {
	switch method {
	case "POST":
		return "create"
	case "PUT", "PATCH":
		return "update"
	case "DELETE":
		return "delete"
	default:
		return "update"
	}
}

// extractResourceFromPath extracts the resource type from the request path
func extractResourceFromPath(path string) string {
	path = strings.TrimPrefix(path, "/")
	switch {
	case strings.HasPrefix(path, "cadastro-pessoa"), strings.HasPrefix(path, "listagem-pessoas"):
		return "pessoa"
	case strings.HasPrefix(path, "download-csv"):
		return "relatorio"
	case strings.HasPrefix(path, "sessao"):
		return "sessao"
	case path == "":
		return "unknown"
	default:
		return strings.SplitN(path, "/", 2)[0]
	}
}
