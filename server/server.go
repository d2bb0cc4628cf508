package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/saqibaltaf27/Convertly/server/config"
	"github.com/saqibaltaf27/Convertly/server/convert"
)

// ConversionServer exposes the conversion and download endpoints
type ConversionServer interface {
	// Start starts the HTTP server and the retention sweeper, blocking
	// until ctx is cancelled or the server fails
	Start(ctx context.Context) error

	// Stop gracefully shuts the server down
	Stop(ctx context.Context) error
}

// SizeTargetedCompressor is the external-process compression collaborator
type SizeTargetedCompressor interface {
	CompressToTarget(ctx context.Context, inPath, outPath string, targetKB int) error
}

// ConversionServerImpl implements the ConversionServer interface
type ConversionServerImpl struct {
	config  *config.Config
	logger  *zap.Logger
	store   ArtifactStore
	sweeper *Sweeper

	pdf    convert.PDFEngine
	images convert.ImageCodec
	office convert.OfficeConverter
	gs     SizeTargetedCompressor

	router *gin.Engine
	server *http.Server
}

// NewConversionServer creates a server instance with the provided collaborators
func NewConversionServer(
	cfg *config.Config,
	logger *zap.Logger,
	store ArtifactStore,
	pdf convert.PDFEngine,
	images convert.ImageCodec,
	office convert.OfficeConverter,
	gs SizeTargetedCompressor,
) *ConversionServerImpl {
	return &ConversionServerImpl{
		config:  cfg,
		logger:  logger,
		store:   store,
		sweeper: NewSweeper(store, cfg.RetentionConfig.MaxAge, cfg.RetentionConfig.SweepInterval, logger),
		pdf:     pdf,
		images:  images,
		office:  office,
		gs:      gs,
	}
}

// Start starts the HTTP server and the retention sweeper
func (s *ConversionServerImpl) Start(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("artifact store must be set before starting server")
	}

	s.setupRouter()

	addr := fmt.Sprintf("%s:%s", s.config.ServerConfig.Host, s.config.ServerConfig.Port)
	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    s.config.ServerConfig.ReadTimeout,
		WriteTimeout:   s.config.ServerConfig.WriteTimeout,
		IdleTimeout:    s.config.ServerConfig.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	s.logger.Info("starting conversion server", zap.String("address", addr))

	sweepCtx, cancelSweep := context.WithCancel(ctx)
	defer cancelSweep()
	go s.sweeper.Run(sweepCtx)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("conversion server context cancelled, shutting down")
		return s.Stop(context.Background())
	case err := <-errChan:
		if err != http.ErrServerClosed {
			return fmt.Errorf("conversion server failed: %w", err)
		}
		return nil
	}
}

// Stop gracefully shuts the server down
func (s *ConversionServerImpl) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("stopping conversion server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("failed to gracefully shutdown conversion server", zap.Error(err))
		return err
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("failed to close artifact store", zap.Error(err))
	}

	s.logger.Info("conversion server stopped")
	return nil
}

// setupRouter configures the HTTP routes
func (s *ConversionServerImpl) setupRouter() {
	if !s.config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(cors.Default())

	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.POST("/compress-pdf", s.handleCompressPDF)
	s.router.POST("/pdf-editor", s.handlePDFEditor)
	s.router.POST("/word-to-excel", s.handleWordToExcel)
	s.router.POST("/excel-to-word", s.handleExcelToWord)
	s.router.POST("/image-compress", s.handleImageCompress)
	s.router.POST("/pdf-to-word", s.handlePDFToWord)

	s.router.GET("/download/:name", s.handleDownload)
}

// loggingMiddleware provides request logging
func (s *ConversionServerImpl) loggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		s.logger.Info("request",
			zap.String("method", param.Method),
			zap.String("path", param.Path),
			zap.Int("status", param.StatusCode),
			zap.Duration("latency", param.Latency),
			zap.String("client_ip", param.ClientIP),
		)
		return ""
	})
}

// handleHealth handles health check requests
func (s *ConversionServerImpl) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
