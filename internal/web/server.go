// Package web serves the BBS over HTTP: a JSON command endpoint and a
// WebSocket line transport.
package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/notepid/dusk_bbs/internal/command"
	"github.com/notepid/dusk_bbs/internal/session"
)

// Server holds the routes and their collaborators.
type Server struct {
	dispatcher *command.Dispatcher
	sessions   *session.Store
	log        *zap.Logger
	engine     *gin.Engine
}

// New builds the gin engine with all routes registered.
func New(d *command.Dispatcher, sessions *session.Store, log *zap.Logger) *Server {
	s := &Server{dispatcher: d, sessions: sessions, log: log}

	r := gin.New()
	r.Use(requestLogger(log))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("request panicked",
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
			zap.Stack("stack"),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/api/command", s.handleCommand)
	r.GET("/ws", s.handleSocket)

	s.engine = r
	return s
}

// Handler returns the HTTP handler for an http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client", c.ClientIP()),
		)
	}
}
