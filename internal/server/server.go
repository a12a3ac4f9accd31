package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/obscuranet/ghostshell/internal/api/http"
	"github.com/obscuranet/ghostshell/internal/api/middleware"
	"github.com/obscuranet/ghostshell/internal/api/ws"
	"github.com/obscuranet/ghostshell/internal/bridge"
	"github.com/obscuranet/ghostshell/internal/config"
	"github.com/obscuranet/ghostshell/internal/logging"
	"github.com/obscuranet/ghostshell/internal/monitoring"
	"github.com/obscuranet/ghostshell/internal/shell"
)

// Server wraps the HTTP server and shell dependencies
type Server struct {
	cfg     *config.Config
	logger  *logging.Logger
	router  *gin.Engine
	http    *http.Server
	shell   *shell.Controller
	client  *bridge.Client
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	metrics := monitoring.NewMetrics()

	client := bridge.NewClient(
		cfg.Bridge.Endpoint,
		cfg.Bridge.Timeout,
		logger,
		bridge.WithObserver(metrics),
	)
	commands := bridge.NewCommands(client)

	ctrl := shell.NewController(cfg, commands, metrics, logger)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}
	router.Use(monitoring.Middleware(metrics))

	handlers := apihttp.NewHandlers(ctrl, client)
	wsHandler := ws.NewHandler(ctrl, metrics, logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Tabs
	router.GET("/tabs", handlers.ListTabs)
	router.POST("/tabs", handlers.OpenTab)
	router.DELETE("/tabs/:id", handlers.CloseTab)
	router.POST("/tabs/:id/navigate", handlers.Navigate)

	// Identity
	router.GET("/identity", handlers.GetIdentity)
	router.POST("/identity/rotate", handlers.RotateIdentity)

	// Panels
	router.POST("/panels/:panel/open", handlers.OpenPanel)
	router.POST("/panels/:panel/close", handlers.ClosePanel)
	router.POST("/panels/:panel/unlock", handlers.UnlockPanel)

	// Settings (gated)
	router.GET("/settings", handlers.GetSettings)
	router.POST("/settings/reset", handlers.ResetSettings)
	router.POST("/settings/:key/toggle", handlers.ToggleSetting)
	router.POST("/whitelist", handlers.AddWhitelist)
	router.DELETE("/whitelist/:domain", handlers.RemoveWhitelist)
	router.GET("/whitelist/check", handlers.CheckWhitelist)

	// Audit log (gated)
	router.GET("/logs", handlers.GetAuditLog)

	// Tools
	router.POST("/tools/select", handlers.SelectTool)
	router.POST("/tools/shell/connect", handlers.ShellConnect)
	router.POST("/tools/shell/execute", handlers.ShellExecute)
	router.POST("/tools/shell/disconnect", handlers.ShellDisconnect)
	router.POST("/tools/diagnostics", handlers.RunDiagnostic)
	router.POST("/tools/probe", handlers.Probe)

	// Downloads
	router.GET("/downloads", handlers.ListDownloads)
	router.POST("/downloads", handlers.StartDownload)
	router.POST("/downloads/clear", handlers.ClearCompletedDownloads)
	router.GET("/downloads/directory", handlers.DownloadDirectory)
	router.POST("/downloads/media", handlers.GrabMedia)
	router.POST("/downloads/:id/:action", handlers.ControlDownload)

	// Keyboard
	router.GET("/keyboard", handlers.KeyboardState)
	router.POST("/keyboard/press", handlers.PressKey)
	router.POST("/keyboard/shuffle", handlers.ShuffleKeyboard)

	// Live security events
	router.GET("/stream", wsHandler.HandleConnection)

	return &Server{
		cfg:     cfg,
		logger:  logger.Named("server"),
		router:  router,
		shell:   ctrl,
		client:  client,
		metrics: metrics,
	}, nil
}

// Shell exposes the composed controller.
func (s *Server) Shell() *shell.Controller {
	return s.shell
}

// Run starts the server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.shell.Initialize(ctx); err != nil {
		s.logger.Warn("starting without identity", zap.Error(err))
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("shell api listening", zap.String("addr", addr))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Close()
	}
}

// Close shuts the server down gracefully.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.shell.Shutdown(ctx)
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
	}
	return nil
}
