package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/wedlockhq/wedlock-api/docs"
	v1 "github.com/wedlockhq/wedlock-api/internal/api/handler/v1"
	"github.com/wedlockhq/wedlock-api/internal/api/middleware"
	"github.com/wedlockhq/wedlock-api/internal/chat"
	"github.com/wedlockhq/wedlock-api/internal/config"
	"github.com/wedlockhq/wedlock-api/internal/repository"
	"github.com/wedlockhq/wedlock-api/internal/repository/dao"
	"github.com/wedlockhq/wedlock-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	if conf.API.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	messageRepo := repository.NewMessageRepository(dao.NewMessageDAO(db))
	attachmentRepo := repository.NewAttachmentRepository(dao.NewAttachmentDAO(db))

	authSvc := service.NewAuthService(userRepo)
	userSvc := service.NewUserService(userRepo)
	eventSvc := service.NewEventService(eventRepo)
	chatSvc := service.NewChatService(messageRepo, eventRepo, userRepo)
	attachmentSvc := service.NewAttachmentService(conf.Upload, attachmentRepo)
	paymentSvc := service.NewPaymentService(conf.Stripe, messageRepo)

	hub := chat.NewHub(chatSvc, conf.Chat.SendBuffer)
	go hub.Run()

	authHandler := v1.NewAuthHandler(conf.API, authSvc)
	userHandler := v1.NewUserHandler(userSvc)
	eventHandler := v1.NewEventHandler(eventSvc, userSvc)
	chatHandler := v1.NewChatHandler(hub, chatSvc, userSvc)
	attachmentHandler := v1.NewAttachmentHandler(attachmentSvc, userSvc)
	paymentHandler := v1.NewPaymentHandler(paymentSvc, userSvc)

	s.MountHandlers(authHandler, userHandler, eventHandler, chatHandler, attachmentHandler, paymentHandler)

	return s
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	eventHandler *v1.EventHandler,
	chatHandler *v1.ChatHandler,
	attachmentHandler *v1.AttachmentHandler,
	paymentHandler *v1.PaymentHandler,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	authenticated := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authenticated.GET("/users", userHandler.HandleListPartners)
		authenticated.GET("/users/:userID", userHandler.HandleGetUser)

		authenticated.GET("/events", eventHandler.HandleGetEvents)
		authenticated.POST("/events", eventHandler.HandleCreateEvent)
		authenticated.GET("/events/:eventID", eventHandler.HandleGetEvent)

		authenticated.GET("/rooms/:partnerID/messages", chatHandler.HandleGetRoomMessages)
		authenticated.GET("/ws", chatHandler.HandleWebSocket)

		authenticated.POST("/attachments", attachmentHandler.HandleUpload)
		authenticated.POST("/proposals/:messageID/checkout", paymentHandler.HandleProposalCheckout)
	}

	s.Router.Static("/uploads", s.Config.Upload.Dir)
	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Wedlock API"
	docs.SwaggerInfo.Description = "Wedding-officiant marketplace: bookings, chat and payments."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
