package service

import (
	"prichal/internal/cache"
	"prichal/internal/config"
	"prichal/internal/messaging"
	"prichal/internal/repository"
	"prichal/internal/search"
)

type Services struct {
	Bookings  *BookingService
	Inventory *InventoryService
	Customers *CustomerService
}

func NewServices(cfg *config.Config, repos *repository.Repositories, natsClient *messaging.NATSClient, esClient *search.ElasticsearchClient, valkey *cache.ValkeyClient) *Services {
	bookingService := NewBookingService(repos.Bookings, repos.Inventory, repos.Customers, natsClient, esClient, cfg.ServiceIntervalRentals)
	inventoryService := NewInventoryService(repos.Inventory, natsClient, valkey)
	customerService := NewCustomerService(repos.Customers)

	return &Services{
		Bookings:  bookingService,
		Inventory: inventoryService,
		Customers: customerService,
	}
}
