package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"prichal/internal/cache"
	"prichal/internal/config"
	"prichal/internal/database"
	"prichal/internal/handlers"
	"prichal/internal/messaging"
	"prichal/internal/middleware"
	"prichal/internal/repository"
	"prichal/internal/search"
	"prichal/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config) *Server {
	// Устанавливаем режим Gin
	gin.SetMode(cfg.GinMode)

	// Подключаемся к базе данных
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Запускаем миграции
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Подключаемся к NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}

	// Elasticsearch и Valkey опциональны: без них сервис работает,
	// но без поиска и без кеша каталога
	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		log.Printf("Elasticsearch unavailable, search disabled: %v", err)
		esClient = nil
	}

	valkeyClient, err := cache.NewValkeyClient()
	if err != nil {
		log.Printf("Valkey unavailable, caching disabled: %v", err)
		valkeyClient = nil
	}

	// Создаем репозитории
	repos := repository.NewRepositories(db)

	// Создаем сервисы
	services := service.NewServices(cfg, repos, natsClient, esClient, valkeyClient)

	// Создаем роутер
	router := gin.New()

	// Применяем middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	// Создаем сервер
	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	// Настраиваем роуты
	server.setupRoutes()

	return server
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	// Create handlers with services
	h := handlers.NewHandlers(s.services, s.valkey)

	// API routes
	api := s.router.Group("/api")
	// Обязательная Basic Auth для всех API роутов
	api.Use(middleware.BasicAuth(s.repos.Users, s.valkey))
	{
		// Bookings endpoints
		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListBookings)
			bookings.GET("/search", h.SearchBookings)
			bookings.GET("/:id", h.GetBooking)
			bookings.PATCH("/:id/start", h.StartBooking)
			bookings.PATCH("/:id/complete", h.CompleteBooking)
			bookings.PATCH("/:id/cancel", h.CancelBooking)
		}

		// Availability endpoints
		availability := api.Group("/availability")
		{
			availability.POST("/check", h.CheckAvailability)
		}

		// Inventory endpoints
		inventory := api.Group("/inventory")
		{
			inventory.POST("/types", h.CreateInventoryType)
			inventory.GET("/types", h.ListInventoryTypes)
			inventory.GET("/types/:id", h.GetInventoryType)
			inventory.PATCH("/types/:id", h.UpdateInventoryType)
			inventory.POST("/items", h.CreateInventoryItem)
			inventory.GET("/items", h.ListInventoryItems)
			inventory.PATCH("/items/:id/status", h.UpdateItemStatus)
			inventory.DELETE("/items/:id", h.DeactivateInventoryItem)
		}

		// Customers endpoints
		customers := api.Group("/customers")
		{
			customers.POST("", h.CreateCustomer)
			customers.GET("", h.ListCustomers)
			customers.GET("/:id", h.GetCustomer)
			customers.GET("/:id/stats", h.GetCustomerStats)
		}
	}

	// Health check endpoint
	s.router.GET("/health", s.healthCheck)

	// Prometheus metrics
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbHealth := s.db.HealthCheck(ctx)
	if dbHealth.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "degraded",
			"database": dbHealth,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "prichal-api",
		"version":  "1.0.0",
		"database": dbHealth,
	})
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Printf("Error closing NATS connection: %v", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			log.Printf("Error closing Valkey connection: %v", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
			return err
		}
	}

	return nil
}
