// Package api exposes the engine over HTTP: a read-only query surface
// plus the three mutating endpoints (ingest a block, undo, reset),
// adapted from the teacher's internal/api/server.go gin+cors setup.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"blockengine/internal/auth"
	"blockengine/internal/engine"
	"blockengine/internal/events"
	"blockengine/internal/persistence"
	"blockengine/internal/tradingwindow"
)

// RateLimiter provides simple in-memory rate limiting per endpoint.
type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	limit    int
	window   time.Duration
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

// Allow checks if a request is allowed for the given key.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-r.window)

	var recent []time.Time
	for _, t := range r.requests[key] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= r.limit {
		r.requests[key] = recent
		return false
	}

	r.requests[key] = append(recent, now)
	return true
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           int
	Host           string
	ProductionMode bool
	AllowedOrigins []string
}

// Server is the HTTP/websocket API around one Engine.
type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	engine      *engine.Engine
	eventBus    *events.EventBus
	window      tradingwindow.Window
	config      ServerConfig
	authService *auth.Service
	authEnabled bool
	rateLimiter *RateLimiter
	redisStore  *persistence.RedisStore
	pgStore     *persistence.PGStore
	decisionLog []decisionLogEntry
	mu          sync.Mutex // serializes AddBlock/UndoLastBlock/Reset against the single Engine
}

// NewServer creates a new API server around eng. authService may be nil,
// in which case mutating routes are left unauthenticated.
func NewServer(
	config ServerConfig,
	eng *engine.Engine,
	eventBus *events.EventBus,
	window tradingwindow.Window,
	authService *auth.Service,
	redisStore *persistence.RedisStore,
	pgStore *persistence.PGStore,
) *Server {
	if config.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(config.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = config.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Length"}
	router.Use(cors.New(corsConfig))

	if window == nil {
		window = tradingwindow.AlwaysOpen{}
	}

	server := &Server{
		router:      router,
		engine:      eng,
		eventBus:    eventBus,
		window:      window,
		config:      config,
		authService: authService,
		authEnabled: authService != nil,
		rateLimiter: NewRateLimiter(120, time.Minute),
		redisStore:  redisStore,
		pgStore:     pgStore,
	}

	server.setupRoutes()
	InitStream(eventBus)

	return server
}

func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if !s.rateLimiter.Allow(path) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   true,
				"message": "rate limit exceeded",
				"path":    path,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// setupRoutes configures every route the engine exposes.
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	s.router.GET("/api/auth/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"auth_enabled": s.authEnabled})
	})

	if s.authEnabled {
		authHandlers := auth.NewHandlers(s.authService)
		authGroup := s.router.Group("/api/auth")
		authHandlers.RegisterRoutes(authGroup)
	}

	api := s.router.Group("/api")
	api.Use(s.rateLimitMiddleware())

	// Read-only query surface: always open, auth-optional.
	api.GET("/prediction", s.handleGetPrediction)
	api.GET("/decisions", s.handleGetDecisionLog)
	api.GET("/ledger/actual", s.handleGetLedgerActual)
	api.GET("/ledger/simulated", s.handleGetLedgerSimulated)
	api.GET("/hostility", s.handleGetHostility)
	api.GET("/pause", s.handleGetPause)
	api.GET("/patterns/:pattern/lifecycle", s.handleGetPatternLifecycle)
	api.GET("/pocket", s.handleGetPocket)
	api.GET("/bucket", s.handleGetBucket)
	api.GET("/snapshots", s.handleGetSnapshots)
	api.GET("/stats", s.handleGetStats)
	api.GET("/export", s.handleExportState)

	// Mutating surface: requires auth when enabled.
	mutating := api.Group("")
	if s.authEnabled {
		mutating.Use(auth.Middleware(s.authService.GetJWTManager()))
	}
	mutating.POST("/blocks", s.handleAddBlock)
	mutating.POST("/undo", s.handleUndo)
	mutating.POST("/reset", s.handleReset)

	s.router.GET("/ws", s.handleWebSocket)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("starting engine-server on %s", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("shutting down engine-server...")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// handleHealth reports process liveness and whether the engine has halted.
func (s *Server) handleHealth(c *gin.Context) {
	s.mu.Lock()
	halted := s.engine.Halted()
	s.mu.Unlock()

	if halted {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "halted"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":   true,
		"message": message,
	})
}

func successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
