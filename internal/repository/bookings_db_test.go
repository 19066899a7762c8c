package repository

// Транзакционные инварианты бронирований на живой базе Postgres.
// Тесты пропускаются, когда DB_HOST не задан; с заданным DB_HOST они
// подключаются по тем же переменным окружения, что и приложение, и
// прогоняют миграции сами. Каждый тест создает собственный тип
// инвентаря и клиента, поэтому базу можно не чистить между прогонами.

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"prichal/internal/booking"
	"prichal/internal/config"
	"prichal/internal/database"
	"prichal/internal/models"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	if os.Getenv("DB_HOST") == "" {
		t.Skip("DB_HOST не задан, пропускаем тесты с базой")
	}

	db, err := database.Connect(config.Load().Database)
	if err != nil {
		t.Fatalf("не удалось подключиться к базе: %v", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		t.Fatalf("миграции не прошли: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func logStep(t *testing.T, format string, args ...interface{}) {
	t.Helper()
	t.Logf("🔹 "+format, args...)
}

func logResult(t *testing.T, format string, args ...interface{}) {
	t.Helper()
	t.Logf("✅ "+format, args...)
}

// newTestType создает уникальный тип инвентаря с заданным числом единиц
func newTestType(t *testing.T, db *database.DB, items int) (int64, []int64) {
	t.Helper()
	ctx := context.Background()
	inv := NewInventoryRepository(db)

	typ := &models.InventoryType{
		Name:                fmt.Sprintf("test_type_%d", time.Now().UnixNano()),
		DisplayName:         "Тестовый тип",
		AffectsAvailability: true,
		BoardEquivalent:     1,
	}
	if err := inv.CreateType(ctx, typ); err != nil {
		t.Fatalf("не удалось создать тип инвентаря: %v", err)
	}

	itemIDs := make([]int64, 0, items)
	for i := 0; i < items; i++ {
		item := &models.InventoryItem{
			InventoryTypeID: typ.ID,
			SerialNumber:    "SN-" + strconv.Itoa(i+1),
		}
		if err := inv.CreateItem(ctx, item); err != nil {
			t.Fatalf("не удалось создать единицу инвентаря: %v", err)
		}
		itemIDs = append(itemIDs, item.ID)
	}
	return typ.ID, itemIDs
}

func newTestCustomer(t *testing.T, db *database.DB) *models.Customer {
	t.Helper()
	c := &models.Customer{
		Name:  "Тестовый клиент",
		Phone: fmt.Sprintf("+7999%010d", time.Now().UnixNano()%10000000000),
	}
	if err := NewCustomerRepository(db).Create(context.Background(), c); err != nil {
		t.Fatalf("не удалось создать клиента: %v", err)
	}
	return c
}

// Две конкурентные брони на последнюю единицу: блокировка строки типа
// сериализует проверки, и ровно одна бронь должна пройти.
func TestCreateConcurrentLastUnit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	typeID, _ := newTestType(t, db, 1)
	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)

	logStep(t, "запускаем два параллельных бронирования последней единицы типа %d", typeID)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b := &models.Booking{PlannedStartTime: start, DurationHours: 2}
			errs <- repo.Create(ctx, b, booking.Demand{typeID: 1})
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, rejected int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case booking.IsInsufficientCapacity(err):
			rejected++
		default:
			t.Fatalf("неожиданная ошибка создания: %v", err)
		}
	}

	if succeeded != 1 || rejected != 1 {
		t.Fatalf("ожидали ровно одну успешную и одну отклоненную бронь, получили %d успешных и %d отклоненных",
			succeeded, rejected)
	}
	logResult(t, "последнюю единицу получила ровно одна бронь")
}

// Полный цикл create -> start -> complete: единица закрепляется на время
// аренды, после возврата уходит обратно в available с пустым
// current_booking_id, а счетчики клиента и выручка растут в той же
// транзакции, что и смена статуса.
func TestBookingLifecycleRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookingRepository(db)
	inv := NewInventoryRepository(db)
	customers := NewCustomerRepository(db)
	ctx := context.Background()

	typeID, itemIDs := newTestType(t, db, 1)
	cust := newTestCustomer(t, db)
	price := "1500.00"
	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)

	logStep(t, "создаем бронь клиента %d на тип %d", cust.ID, typeID)
	b := &models.Booking{
		CustomerID:       &cust.ID,
		PlannedStartTime: start,
		DurationHours:    2,
		TotalPrice:       &price,
	}
	if err := repo.Create(ctx, b, booking.Demand{typeID: 1}); err != nil {
		t.Fatalf("создание брони: %v", err)
	}
	if b.Status != booking.StatusBooked {
		t.Fatalf("ожидали статус %s, получили %s", booking.StatusBooked, b.Status)
	}

	logStep(t, "стартуем аренду %d", b.ID)
	started, err := repo.Start(ctx, b.ID, start)
	if err != nil {
		t.Fatalf("старт аренды: %v", err)
	}
	if started.Status != booking.StatusInProgress {
		t.Fatalf("ожидали статус %s, получили %s", booking.StatusInProgress, started.Status)
	}

	item, err := inv.GetItemByID(ctx, itemIDs[0])
	if err != nil || item == nil {
		t.Fatalf("единица после старта не найдена: %v", err)
	}
	if item.Status != booking.ItemInUse {
		t.Fatalf("ожидали статус единицы %s, получили %s", booking.ItemInUse, item.Status)
	}
	if item.CurrentBookingID == nil || *item.CurrentBookingID != b.ID {
		t.Fatalf("единица не закреплена за бронью %d: %v", b.ID, item.CurrentBookingID)
	}

	assignments, err := repo.GetAssignments(ctx, b.ID)
	if err != nil {
		t.Fatalf("чтение назначений: %v", err)
	}
	if len(assignments) != 1 || assignments[0].InventoryItemID != itemIDs[0] {
		t.Fatalf("ожидали одно назначение на единицу %d, получили %+v", itemIDs[0], assignments)
	}

	logStep(t, "завершаем аренду %d", b.ID)
	returnedAt := start.Add(2 * time.Hour)
	completed, err := repo.Complete(ctx, b.ID, returnedAt, 0)
	if err != nil {
		t.Fatalf("завершение аренды: %v", err)
	}
	if completed.Status != booking.StatusCompleted {
		t.Fatalf("ожидали статус %s, получили %s", booking.StatusCompleted, completed.Status)
	}

	item, err = inv.GetItemByID(ctx, itemIDs[0])
	if err != nil || item == nil {
		t.Fatalf("единица после возврата не найдена: %v", err)
	}
	if item.Status != booking.ItemAvailable {
		t.Fatalf("единица не вернулась в %s: %s", booking.ItemAvailable, item.Status)
	}
	if item.CurrentBookingID != nil {
		t.Fatalf("current_booking_id не очищен: %d", *item.CurrentBookingID)
	}

	after, err := customers.GetByID(ctx, cust.ID)
	if err != nil || after == nil {
		t.Fatalf("клиент после завершения не найден: %v", err)
	}
	if after.TotalBookingsCount != 1 || after.CompletedBookingsCount != 1 {
		t.Fatalf("счетчики клиента не сошлись: total=%d completed=%d",
			after.TotalBookingsCount, after.CompletedBookingsCount)
	}
	revenue, err := strconv.ParseFloat(after.TotalRevenue, 64)
	if err != nil || revenue != 1500 {
		t.Fatalf("ожидали выручку 1500, получили %q", after.TotalRevenue)
	}
	if after.LastBookingDate == nil {
		t.Fatal("last_booking_date не проставлена")
	}
	logResult(t, "единица свободна, счетчики и выручка клиента обновлены атомарно")
}

// Повторная отмена той же брони: первая побеждает, вторая получает
// InvalidTransitionError, счетчик отмен растет ровно один раз.
func TestCancelTwice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookingRepository(db)
	customers := NewCustomerRepository(db)
	ctx := context.Background()

	typeID, _ := newTestType(t, db, 1)
	cust := newTestCustomer(t, db)
	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)

	b := &models.Booking{
		CustomerID:       &cust.ID,
		PlannedStartTime: start,
		DurationHours:    1,
	}
	if err := repo.Create(ctx, b, booking.Demand{typeID: 1}); err != nil {
		t.Fatalf("создание брони: %v", err)
	}

	logStep(t, "отменяем бронь %d дважды", b.ID)
	cancelled, err := repo.Cancel(ctx, b.ID, "клиент передумал")
	if err != nil {
		t.Fatalf("первая отмена: %v", err)
	}
	if cancelled.Status != booking.StatusCancelled {
		t.Fatalf("ожидали статус %s, получили %s", booking.StatusCancelled, cancelled.Status)
	}

	_, err = repo.Cancel(ctx, b.ID, "повторная отмена")
	if !booking.IsInvalidTransition(err) {
		t.Fatalf("ожидали InvalidTransitionError на повторную отмену, получили %v", err)
	}

	after, err := customers.GetByID(ctx, cust.ID)
	if err != nil || after == nil {
		t.Fatalf("клиент после отмены не найден: %v", err)
	}
	if after.CancelledBookingsCount != 1 {
		t.Fatalf("счетчик отмен должен быть 1, получили %d", after.CancelledBookingsCount)
	}
	logResult(t, "вторая отмена отклонена, счетчик отмен увеличен один раз")
}
