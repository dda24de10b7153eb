package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jabinweb/church-manager-sub003/internal/config"
	"github.com/jabinweb/church-manager-sub003/internal/handler"
	"github.com/jabinweb/church-manager-sub003/internal/middleware"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"github.com/jabinweb/church-manager-sub003/internal/push"
	"github.com/jabinweb/church-manager-sub003/internal/repository"
	"github.com/jabinweb/church-manager-sub003/internal/service"
	"github.com/jabinweb/church-manager-sub003/migrations"
	"github.com/jabinweb/church-manager-sub003/pkg/auth"
	"github.com/jabinweb/church-manager-sub003/pkg/notification"
	"github.com/jabinweb/church-manager-sub003/pkg/storage"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// @title           Church Manager Messaging API
// @version         1.0
// @description     Real-time messaging API for church communities: conversations, announcements, call signaling and live event streams.

// @contact.name   API Support
// @contact.email  support@church-manager.local

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      api.localhost
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// ==================== Load Config ====================
	cfg := config.Load()
	log.Printf("🚀 Starting Church Manager Messaging API [env=%s]", cfg.App.Env)

	// ==================== Database (PostgreSQL) ====================
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.App.Env == "production" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL")

	// ==================== Run Migrations ====================
	if err := migrations.Run(cfg.DB.URL()); err != nil {
		log.Printf("⚠️  Migration warning: %v", err)
		log.Println("📦 Falling back to GORM AutoMigrate...")
		if err := db.AutoMigrate(
			&model.User{},
			&model.UserDevice{},
			&model.Conversation{},
			&model.ConversationParticipant{},
			&model.Message{},
			&model.MessageReaction{},
		); err != nil {
			log.Fatalf("❌ Failed to migrate database: %v", err)
		}
	}
	log.Println("✅ Database migrated successfully")

	// ==================== Redis ====================
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	log.Println("✅ Connected to Redis")

	// ==================== Initialize Layers ====================
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, jwtManager, rdb)
	convService := service.NewConversationService(convRepo, msgRepo, userRepo)
	msgService := service.NewMessageService(msgRepo, convRepo, userRepo)

	// Push pipeline: connection registry, FCM for offline recipients,
	// and the dispatcher fanning events out to conversation participants.
	registry := push.NewRegistry()
	fcmNotifier := notification.NewFCMNotifier(cfg.Firebase.CredentialsFile, userRepo)
	dispatcher := push.NewDispatcher(registry, convService, fcmNotifier)
	callRelay := push.NewCallSignalRelay(registry)

	dispatcherCtx, dispatcherCancel := context.WithCancel(context.Background())
	defer dispatcherCancel()
	go dispatcher.Run(dispatcherCtx)

	// MinIO attachment storage
	attachmentStore, err := storage.NewAttachmentStore(storage.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		PublicURL: cfg.MinIO.PublicURL,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		log.Printf("⚠️  MinIO not available: %v (file upload disabled)", err)
	}
	if attachmentStore != nil {
		log.Println("✅ Connected to MinIO")
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	convHandler := handler.NewConversationHandler(convService, authService)
	msgHandler := handler.NewMessageHandler(msgService, dispatcher)
	streamHandler := handler.NewStreamHandler(registry, jwtManager, userRepo)
	wsHandler := handler.NewWSHandler(registry, jwtManager, userRepo)
	callHandler := handler.NewCallHandler(callRelay)
	uploadHandler := handler.NewUploadHandler(attachmentStore)

	// ==================== Gin Router ====================
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Swagger JSON served outside the /swagger wildcard
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")
	url := ginSwagger.URL("/docs/swagger.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))

	// Global middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.Origins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "church-manager-api",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// ==================== API Routes ====================
	api := router.Group("/api/v1")
	{
		// Auth routes (public)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(jwtManager, rdb))
		{
			// Auth
			protected.POST("/auth/logout", authHandler.Logout)
			protected.GET("/auth/profile", authHandler.GetProfile)
			protected.POST("/auth/devices", authHandler.RegisterDevice)
			protected.GET("/users/search", authHandler.SearchUsers)

			// Conversations
			protected.GET("/conversations", convHandler.List)
			protected.POST("/conversations", convHandler.Create)
			protected.GET("/conversations/:id", convHandler.Get)
			protected.POST("/conversations/:id/leave", convHandler.Leave)
			protected.POST("/conversations/:id/archive", convHandler.Archive)
			protected.POST("/conversations/:id/participants", convHandler.AddParticipant)

			// Messages
			protected.GET("/conversations/:id/messages", msgHandler.List)
			protected.POST("/conversations/:id/messages", msgHandler.Send)
			protected.POST("/conversations/:id/read", msgHandler.MarkRead)
			protected.POST("/conversations/:id/typing", msgHandler.Typing)
			protected.PATCH("/messages/:id", msgHandler.Edit)
			protected.DELETE("/messages/:id", msgHandler.Delete)
			protected.POST("/messages/:id/reactions", msgHandler.ToggleReaction)
			protected.POST("/messages/:id/pin", msgHandler.Pin)

			// Calls
			protected.POST("/calls/signal", callHandler.Signal)

			// Presence
			protected.GET("/presence", streamHandler.Presence)

			// Upload
			protected.POST("/upload", uploadHandler.Upload)
			protected.POST("/upload/multiple", uploadHandler.UploadMultiple)
		}
	}

	// Push transports (auth via query parameter; both deliver the same envelopes)
	router.GET("/stream", streamHandler.Stream)
	router.GET("/ws", wsHandler.HandleWebSocket)

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	log.Printf("🌐 Church Manager API running on http://0.0.0.0:%s", cfg.App.Port)
	log.Printf("📋 API docs: http://0.0.0.0:%s/swagger/index.html", cfg.App.Port)
	log.Printf("📡 Event stream: http://0.0.0.0:%s/stream?token=<jwt>", cfg.App.Port)
	log.Printf("🔌 WebSocket: ws://0.0.0.0:%s/ws?token=<jwt>", cfg.App.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	// Give ongoing requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	dispatcherCancel()
	log.Println("✅ Server exited gracefully")
}
