// Package webapi exposes the moderation service over HTTP: the platform
// event webhook, the moderator admin surface, health and metrics.
package webapi

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/modsentry/modsentry/internal/flagged"
	"github.com/modsentry/modsentry/internal/reportlog"
	"github.com/modsentry/modsentry/internal/router"
)

// Config holds the HTTP surface configuration.
type Config struct {
	CORSOrigins  []string
	RateLimitRPS int
	AdminSecret  string
}

// Server wires the moderation core to the HTTP surface.
type Server struct {
	cfg     Config
	router  *router.Router
	reports reportlog.Log
	flags   flagged.Store
	tokens  *TokenIssuer
	logger  *zap.Logger
}

// NewServer creates a Server.
func NewServer(cfg Config, r *router.Router, reports reportlog.Log, flags flagged.Store, logger *zap.Logger) *Server {
	return &Server{
		cfg:     cfg,
		router:  r,
		reports: reports,
		flags:   flags,
		tokens:  NewTokenIssuer(cfg.AdminSecret, "modsentry"),
		logger:  logger,
	}
}

// Engine builds the Gin engine with all routes registered.
func (s *Server) Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(PrometheusMiddleware())

	if len(s.cfg.CORSOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:  s.cfg.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}
	if s.cfg.RateLimitRPS > 0 {
		engine.Use(RateLimiter(s.cfg))
	}

	engine.GET("/healthz", s.Health)
	engine.GET("/metrics", MetricsHandler())

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/events", s.HandleEvent)
		v1.POST("/auth/token", s.MintToken)

		admin := v1.Group("/admin")
		admin.Use(RequireModeratorToken(s.tokens))
		{
			admin.GET("/reports", s.ListReports)
			admin.GET("/flagged", s.ListFlagged)
			admin.PUT("/flagged/:id", s.FlagAccount)
			admin.DELETE("/flagged/:id", s.UnflagAccount)
		}
	}
	return engine
}

// Health handles GET /healthz.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// mintTokenRequest is the payload for MintToken.
type mintTokenRequest struct {
	Secret    string `json:"secret" binding:"required"`
	Moderator string `json:"moderator" binding:"required"`
}

// MintToken handles POST /api/v1/auth/token — exchanges the shared admin
// secret for a moderator bearer token.
func (s *Server) MintToken(c *gin.Context) {
	var req mintTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !s.tokens.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no admin secret configured"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(s.cfg.AdminSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid secret"})
		return
	}

	token, err := s.tokens.Mint(req.Moderator)
	if err != nil {
		s.logger.Error("mint moderator token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mint token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
