package handlers

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/prefeitura-rio/app-cadastro/internal/config"
	"github.com/prefeitura-rio/app-cadastro/internal/middleware"
	"github.com/prefeitura-rio/app-cadastro/internal/services"
	"github.com/prefeitura-rio/app-cadastro/internal/web"

	_ "github.com/prefeitura-rio/app-cadastro/docs"
)

// NewRouter builds the gin engine with middleware, pages and JSON routes
func NewRouter(cfg *config.Config, h *Handlers) (*gin.Engine, error) {
	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, middleware.RequestIDHeader)

	router := gin.New()
	router.SetHTMLTemplate(templates)
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RequestTracker(),
		middleware.RequestTiming(),
		middleware.AuditMiddleware(),
		cors.New(corsConfig),
	)

	// Infrastructure
	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.StaticFS("/static", web.Static())

	// Pages
	router.GET(PageHome.Path(), h.HomeRedirect)
	router.GET(services.FormPath, h.NewPersonPage)
	router.POST(services.FormPath, h.SubmitPerson)
	router.GET(services.FormPath+"/:id", h.EditPersonPage)
	router.POST(services.FormPath+"/:id", h.SubmitPerson)

	router.GET(services.ListPath, h.ListPage)
	router.GET(services.ListPath+"/:id/excluir", h.ConfirmDeletePage)
	router.POST(services.ListPath+"/:id/excluir", h.DeletePerson)

	router.GET(services.DownloadPath, h.DownloadPage)
	router.POST(services.DownloadPath+"/gerar", h.GenerateReport)
	router.POST(services.DownloadPath+"/baixar", h.DownloadReport)
	router.GET(services.DownloadPath+"/arquivo.xlsx", h.ExportXLSX)

	router.GET(services.AuditPath, h.AuditPage)

	// Page sessions
	router.GET("/sessao/:session/cep/:cep", h.LookupCEP)
	router.DELETE("/sessao/:session", h.CloseSession)

	return router, nil
}
