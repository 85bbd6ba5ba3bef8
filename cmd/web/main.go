package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prefeitura-rio/app-cadastro/internal/config"
	"github.com/prefeitura-rio/app-cadastro/internal/handlers"
	"github.com/prefeitura-rio/app-cadastro/internal/logging"
	"github.com/prefeitura-rio/app-cadastro/internal/observability"
	"github.com/prefeitura-rio/app-cadastro/internal/services"
)

// @title           Emiteaí Cadastro
// @version         1.0
// @description     Front-end web de cadastro de pessoas. Serve as páginas de cadastro, listagem, download de relatório e auditoria, e os endpoints JSON usados pelos scripts das páginas (busca de CEP e encerramento de sessão).

// @contact.name   Equipe Emiteaí
// @contact.email  suporte@emiteai.com.br

// @host      localhost:3000
// @BasePath  /

// @tag.name cep
// @tag.description Busca de endereço pelo CEP

// @tag.name sessao
// @tag.description Sessões de página

// @tag.name relatorio
// @tag.description Exportação do relatório de pessoas

// @tag.name health
// @tag.description Health check operations

// sessionSweepInterval is how often idle page sessions are collected
const sessionSweepInterval = time.Minute

func main() {
	// Initialize logger first
	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logging.Logger.Sync()

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}
	cfg := config.AppConfig

	// Initialize observability
	observability.InitTracer(cfg)
	defer observability.ShutdownTracer()

	// CEP cache is optional
	config.InitRedis()
	defer config.CloseRedis()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	backend := services.NewBackendClient(cfg, logging.Logger)
	defer backend.Close()

	cache := services.NewCEPCache(config.Redis, cfg.CEPCacheTTL, logging.Logger)
	resolver := services.NewCEPResolver(backend, cache, logging.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions := services.NewPageSessions(cfg.PageSessionTTL)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sessions.Run(ctx, sessionSweepInterval)
	}()

	h := handlers.NewHandlers(cfg, backend, resolver, sessions, config.Redis, logging.Logger)
	router, err := handlers.NewRouter(cfg, h)
	if err != nil {
		logging.Logger.Fatal("failed to build router", zap.Error(err))
	}

	// Create server with timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.BackendTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logging.Logger.Info("starting server",
			zap.Int("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("api_base_url", cfg.APIBaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Error("failed to start server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	logging.Logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Error("server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
	<-sweepDone

	logging.Logger.Info("server exited gracefully")
}
