// Package devserver is the reference implementation of the server-owned
// contract: the REST endpoints and the push channel the client consumes. It
// keeps everything in memory so the client can be developed and tested
// against a real wire without external services.
package devserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"patientcall/internal/config"
	"patientcall/internal/models"
	"patientcall/internal/security"
)

type Server struct {
	cfg      config.DevServerConfig
	log      zerolog.Logger
	store    *Store
	hub      *Hub
	engine   *gin.Engine
	server   *http.Server
	upgrader websocket.Upgrader
}

func NewServer(environment string, cfg config.DevServerConfig, log zerolog.Logger, mirror *redis.Client) (*Server, error) {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	store := NewStore()
	if err := store.SeedAdmin("Administrator", cfg.AdminEmail, cfg.AdminPass); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	s := &Server{
		cfg:   cfg,
		log:   log,
		store: store,
		hub:   NewHub(log, mirror, cfg.RedisStream),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	engine := gin.New()
	engine.Use(
		requestID(),
		requestLogger(log),
		recovery(log),
	)
	s.engine = engine
	s.routes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/ws", s.handleSocket)

	api := s.engine.Group("/api")
	api.GET("/healthz", s.handleHealth)

	auth := api.Group("/auth")
	auth.POST("/login", s.handleLogin)
	auth.POST("/register-patient", s.handleRegisterPatient)
	auth.POST("/register-nurse", s.handleRegisterNurse)

	nurses := api.Group("/nurses")
	nurses.Use(s.auth(), requireRoles(models.UserRoleAdmin))
	nurses.GET("", s.handleListNurses)
	nurses.PUT("/:id/approve", s.handleApproveNurse)
	nurses.PUT("/:id/reject", s.handleRejectNurse)

	requests := api.Group("/requests")
	requests.Use(s.auth())
	requests.GET("", s.handleListRequests)
	requests.POST("", requireRoles(models.UserRolePatient, models.UserRoleAdmin), s.handleCreateRequest)
	requests.PUT("/:id/status", s.handleUpdateRequestStatus)
}

// handleSocket authenticates the upgrade (header or token query parameter,
// matching how mobile websocket stacks pass credentials) and parks the
// connection in the hub until it closes.
func (s *Server) handleSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		header := c.GetHeader("Authorization")
		if len(header) > 7 && header[:7] == "Bearer " {
			token = header[7:]
		}
	}
	if token == "" {
		c.String(http.StatusUnauthorized, "missing token")
		return
	}

	claims, err := security.ParseAccessToken(token, s.cfg.JWTSecret)
	if err != nil {
		c.String(http.StatusUnauthorized, "invalid token")
		return
	}
	if _, err := s.store.GetUser(claims.UserID); err != nil {
		c.String(http.StatusUnauthorized, "user not found")
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	s.hub.Register(conn)
	s.log.Debug().Str("user_id", claims.UserID).Msg("socket client connected")

	// Clients never send application data; the read loop just watches for
	// the close.
	go func() {
		defer s.hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Engine exposes the router for httptest-based exercises.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Store exposes the backing store for test seeding.
func (s *Server) Store() *Store {
	return s.store
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("dev server starting")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("dev server shutting down")
	s.hub.Close()
	return s.server.Shutdown(ctx)
}
