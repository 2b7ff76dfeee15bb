package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/clubdesk/internal/auth"
	"github.com/MarkoPoloResearchLab/clubdesk/pkg/club"
)

// Server is the HTTP facade over the club service.
type Server struct {
	cfg      Config
	logger   *zap.Logger
	service  *club.Service
	sessions *auth.Sessions
	router   *gin.Engine
}

// New wires the router and returns a ready-to-run server.
func New(cfg Config, service *club.Service, sessions *auth.Sessions, logger *zap.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	server := &Server{
		cfg:      cfg,
		logger:   logger,
		service:  service,
		sessions: sessions,
	}
	server.router = server.setupRouter()
	return server, nil
}

// Router exposes the gin engine, primarily for tests.
func (server *Server) Router() *gin.Engine {
	return server.router
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (server *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    server.cfg.ListenAddr,
		Handler: server.router,
	}

	errCh := make(chan error, 1)
	go func() {
		server.logger.Info("clubdesk listening", zap.String("addr", server.cfg.ListenAddr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			server.logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (server *Server) setupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     server.cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Origin", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/api/login", server.handleLogin)

	api := router.Group("/api")
	api.Use(auth.GinMiddleware(server.sessions))

	api.POST("/logout", server.handleLogout)
	api.GET("/session", server.handleSession)

	api.GET("/customers", server.handleListCustomers)
	api.POST("/customers", server.handleCreateCustomer)
	api.GET("/customers/:id", server.handleGetCustomer)
	api.GET("/customers/:id/recharges", server.handleListRecharges)
	api.POST("/customers/:id/recharges", server.handleRecharge)

	api.GET("/rooms", server.handleListRooms)
	api.GET("/rooms/available", server.handleAvailableRooms)
	api.GET("/bookings/grid", server.handleBookingGrid)

	api.GET("/orders", server.handleListOrders)
	api.POST("/orders", server.handleCreateOrder)
	api.POST("/orders/:id/approve", server.transitionHandler(club.OrderActionApprove))
	api.POST("/orders/:id/reject", server.transitionHandler(club.OrderActionReject))
	api.POST("/orders/:id/pay", server.transitionHandler(club.OrderActionMarkPaid))
	api.POST("/orders/:id/cancel", server.transitionHandler(club.OrderActionCancel))

	api.GET("/dashboard", server.handleDashboard)

	return router
}

func (server *Server) actorFromContext(ctx *gin.Context) (club.Actor, bool) {
	identity, found := auth.IdentityFromContext(ctx)
	if !found {
		ctx.JSON(http.StatusUnauthorized, errorResponse("invalid_identity", "missing session"))
		return club.Actor{}, false
	}
	actor, err := identity.Actor()
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse("invalid_identity", "malformed session"))
		return club.Actor{}, false
	}
	return actor, true
}
