package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/cidbot/backend/config"
	"github.com/cidbot/backend/internal/api"
	"github.com/cidbot/backend/internal/bot"
	"github.com/cidbot/backend/internal/middleware"
)

// Server is the HTTP ingress: the chat-platform webhook plus the health
// endpoint.
type Server struct {
	engine *gin.Engine
	http   *http.Server
	log    *logrus.Entry
}

// New creates a new Server instance
func New(cfg *config.Config, db *gorm.DB, router *bot.Router, log *logrus.Entry) *Server {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(log))
	engine.Use(middleware.CORS())

	api.NewHealthHandler(db).RegisterRoutes(engine)
	api.NewWebhookHandler(router, cfg.BotToken, log).RegisterRoutes(engine)

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Start blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.log.WithField("addr", s.http.Addr).Info("http server listening")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
