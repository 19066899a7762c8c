package consumers

import (
	"context"
	"log/slog"

	"prichal/internal/config"
	"prichal/internal/database"
	"prichal/internal/messaging"
	"prichal/internal/models"
	"prichal/internal/repository"
	"prichal/internal/search"
)

type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	repos    *repository.Repositories
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	// Connect to NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	// Поисковый индекс опционален: консьюмеры работают и без него
	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		slog.Warn("Elasticsearch unavailable, index sync disabled", "error", err)
		esClient = nil
	}

	// Create repositories
	repos := repository.NewRepositories(db)

	// Create handlers
	handlers := NewHandlers(repos, esClient)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		repos:    repos,
		handlers: handlers,
	}, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	// Subscribe to booking lifecycle events
	_, err := cs.nats.SubscribeQueue(models.EventBookingCreated, "consumers", cs.handlers.HandleBookingCreated)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventBookingStarted, "consumers", cs.handlers.HandleBookingStarted)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventBookingCompleted, "consumers", cs.handlers.HandleBookingCompleted)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventBookingCancelled, "consumers", cs.handlers.HandleBookingCancelled)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventBookingOverdue, "consumers", cs.handlers.HandleBookingOverdue)
	if err != nil {
		return err
	}

	// Subscribe to inventory events
	_, err = cs.nats.SubscribeQueue(models.EventItemStatusChanged, "consumers", cs.handlers.HandleItemStatusChanged)
	if err != nil {
		return err
	}

	slog.Info("All consumers started successfully")
	return nil
}

// Repos отдает репозитории для фоновых джобов, живущих рядом с консьюмерами
func (cs *ConsumerService) Repos() *repository.Repositories {
	return cs.repos
}

// NATS отдает соединение для джобов, публикующих события
func (cs *ConsumerService) NATS() *messaging.NATSClient {
	return cs.nats
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
