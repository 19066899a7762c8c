package repository

import (
	"prichal/internal/database"
)

type Repositories struct {
	Inventory *InventoryRepository
	Bookings  *BookingRepository
	Customers *CustomerRepository
	Users     *UserRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Inventory: NewInventoryRepository(db),
		Bookings:  NewBookingRepository(db),
		Customers: NewCustomerRepository(db),
		Users:     NewUserRepository(db),
	}
}
