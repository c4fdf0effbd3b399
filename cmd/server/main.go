package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/estherpeter24/urge-backend/internal/cache"
	"github.com/estherpeter24/urge-backend/internal/handlers"
	"github.com/estherpeter24/urge-backend/internal/httpx"
	"github.com/estherpeter24/urge-backend/internal/middleware"
	"github.com/estherpeter24/urge-backend/internal/push"
	"github.com/estherpeter24/urge-backend/internal/realtime"
	"github.com/estherpeter24/urge-backend/internal/repository"
	"github.com/estherpeter24/urge-backend/internal/service"
)

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("WARNING: invalid duration in %s, using %s", key, fallback)
	}
	return fallback
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Urge Backend",
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, redisPassword, redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}

	messageCache := cache.NewMessageCache(redisCache)
	presenceCache := cache.NewPresenceCache(redisCache)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo)
	conversationService := service.NewConversationService(conversationRepo, userRepo)
	messageService := service.NewMessageService(messageRepo, conversationRepo, deliveryRepo, messageCache)

	// Push hand-off for offline recipients; no Redis means no pushes.
	var notifier realtime.PushNotifier = push.Nop{}
	if redisCache != nil {
		notifier = push.NewRedisNotifier(redisCache)
	}

	// Initialize the realtime coordinator
	secret := []byte(jwtSecret)
	gateway := realtime.New(realtime.Config{
		GraceWindow: envDuration("PRESENCE_GRACE_WINDOW", 5*time.Second),
		TypingTTL:   envDuration("TYPING_TTL", 6*time.Second),
		IdleTimeout: envDuration("WS_IDLE_TIMEOUT", 90*time.Second),
	}, conversationRepo, deliveryRepo, messageRepo, notifier, func(token string) (uint, error) {
		claims, err := middleware.ParseToken(strings.TrimPrefix(token, "Bearer "), secret)
		if err != nil {
			return 0, err
		}
		return claims.UserID, nil
	})

	// Mirror presence transitions into the users table and Redis so other
	// nodes and services can read them.
	gateway.Presence().Watch(func(e realtime.PresenceEvent) {
		if e.Online {
			if err := userService.SetUserOnline(e.UserID); err != nil {
				log.Printf("presence: mark user %d online: %v", e.UserID, err)
			}
			if err := presenceCache.SetUserOnline(e.UserID); err != nil {
				log.Printf("presence: cache user %d online: %v", e.UserID, err)
			}
			return
		}
		if err := userService.SetUserOffline(e.UserID, e.LastSeenAt); err != nil {
			log.Printf("presence: mark user %d offline: %v", e.UserID, err)
		}
		if err := presenceCache.SetUserOffline(e.UserID, e.LastSeenAt); err != nil {
			log.Printf("presence: cache user %d offline: %v", e.UserID, err)
		}
	})

	gateway.Start()
	defer gateway.Stop()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, gateway.Presence())
	conversationHandler := handlers.NewConversationHandler(conversationService, gateway.Rooms())
	messageHandler := handlers.NewMessageHandler(messageService, gateway.Delivery())

	// Protected routes
	api := app.Group("/api", middleware.AuthRequired())
	api.Get("/users/me", userHandler.Me)
	api.Put("/users/me", userHandler.UpdateMe)
	api.Get("/users/search", userHandler.SearchUsers)
	api.Get("/presence/:id", userHandler.GetPresence)

	api.Get("/conversations", conversationHandler.List)
	api.Post("/conversations/direct", conversationHandler.CreateDirect)
	api.Post("/conversations/group", conversationHandler.CreateGroup)
	api.Get("/conversations/:id", conversationHandler.Get)
	api.Post("/conversations/:id/participants", conversationHandler.AddParticipant)
	api.Delete("/conversations/:id/participants/:userId", conversationHandler.RemoveParticipant)

	api.Get("/conversations/:id/messages", messageHandler.List)
	api.Post("/conversations/:id/messages", limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if uid, err := httpx.LocalUint(c, "userID"); err == nil {
				return "send:" + strconv.FormatUint(uint64(uid), 10)
			}
			return c.IP()
		},
	}), messageHandler.Send)
	api.Post("/conversations/:id/read", messageHandler.MarkRead)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(gateway.Handle))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Urge backend is running",
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
