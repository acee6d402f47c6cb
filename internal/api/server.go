package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/studentorg/events-api/docs"
	v1 "github.com/studentorg/events-api/internal/api/handler/v1"
	"github.com/studentorg/events-api/internal/api/middleware"
	"github.com/studentorg/events-api/internal/cache"
	"github.com/studentorg/events-api/internal/config"
	"github.com/studentorg/events-api/internal/repository"
	"github.com/studentorg/events-api/internal/repository/dao"
	"github.com/studentorg/events-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	authenticator *middleware.Authenticator
}

func NewServer(conf *config.AppConfig, db *gorm.DB, notifier service.Notifier) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	store := dao.NewStore(db)
	s.authenticator = s.initAuthenticator(store)
	userHandler := s.initUserHandler(store)
	eventHandler, registrationHandler := s.initEventHandlers(store, notifier)
	s.MountHandlers(userHandler, eventHandler, registrationHandler)

	return s
}

func (s *Server) initAuthenticator(store *dao.Store) *middleware.Authenticator {
	repo := repository.NewUserRepository(store.Users)
	memberships := cache.NewInMemory[uint, []string]("memberships", s.Config.Cache.MembershipTTL, cache.DefaultCleanupInterval)
	svc := service.NewActorService(repo, memberships, s.Config.Cache.MembershipTTL, s.Config.API.AdminGroups)

	return middleware.NewAuthenticator(s.Config.API.JWTSigningKey, svc)
}

func (s *Server) initUserHandler(store *dao.Store) *v1.UserHandler {
	repo := repository.NewUserRepository(store.Users)
	svc := service.NewUserService(repo)

	return v1.NewUserHandler(svc)
}

func (s *Server) initEventHandlers(store *dao.Store, notifier service.Notifier) (*v1.EventHandler, *v1.RegistrationHandler) {
	repo := repository.NewEventRepository(store)
	eventSvc := service.NewEventService(repo, notifier)
	registrationSvc := service.NewRegistrationService(repo, notifier)

	return v1.NewEventHandler(eventSvc), v1.NewRegistrationHandler(registrationSvc)
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(userHandler *v1.UserHandler, eventHandler *v1.EventHandler, registrationHandler *v1.RegistrationHandler) {
	const basePath = "/api/v1"

	users := s.Router.Group(basePath, s.authenticator.VerifyJWT())
	{
		users.GET("/users/:userID", userHandler.HandleGetUser)
	}

	events := s.Router.Group(basePath, s.authenticator.VerifyJWT())
	{
		events.POST("/events/", eventHandler.HandleCreateEvent)
		events.GET("/events/:eventID", eventHandler.HandleGetEvent)
		events.PUT("/events/:eventID", eventHandler.HandleUpdateEvent)

		events.GET("/events/:eventID/registrations/", registrationHandler.HandleListRegistrations)
		events.POST("/events/:eventID/registrations/", registrationHandler.HandleRegister)
		events.POST("/events/:eventID/registrations/add/", registrationHandler.HandleAddRegistration)
		events.GET("/events/:eventID/registrations/:userID/", registrationHandler.HandleGetRegistration)
		events.PUT("/events/:eventID/registrations/:userID/", registrationHandler.HandleUpdateRegistration)
		events.DELETE("/events/:eventID/registrations/:userID/", registrationHandler.HandleUnregister)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Event registration API"
	docs.SwaggerInfo.Description = "Event sign up with capacity limits, priority pools and waiting lists."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

// Run serves until ctx is cancelled, then drains in-flight requests within the configured
// shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.Config.API.Port,
		Handler:      s.Router,
		ReadTimeout:  s.Config.API.ReadTimeout,
		WriteTimeout: s.Config.API.WriteTimeout,
		IdleTimeout:  s.Config.API.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("srv.ListenAndServe -> %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.API.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown -> %w", err)
	}

	return nil
}
