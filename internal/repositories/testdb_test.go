package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"

	"github.com/jessejferrell/Events-Hub-sub001/internal/database"
	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL and
// applies the embedded migrations. Tests are skipped when no test
// database is configured.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Skipf("Failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("Failed to ping test database: %v", err)
	}

	if err := database.MigrateUp(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}

// createTestUser creates a user with a unique email
func createTestUser(t *testing.T, db *sql.DB, role models.UserRole) *models.User {
	t.Helper()

	repo := NewUserRepository(db)
	req := &models.UserCreateRequest{
		Email:     fmt.Sprintf("test%d@example.com", time.Now().UnixNano()),
		Password:  "validpassword123",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	}

	user, err := repo.Create(context.Background(), req, "hashedpassword")
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// createTestEvent creates a published event with a unique slug
func createTestEvent(t *testing.T, db *sql.DB, organizerID int) *models.Event {
	t.Helper()

	repo := NewEventRepository(db)
	nano := time.Now().UnixNano()
	event := &models.Event{
		OrganizerID: organizerID,
		Title:       fmt.Sprintf("Test Event %d", nano),
		Slug:        fmt.Sprintf("test-event-%d", nano),
		Description: "A test event",
		Location:    "Community Center",
		StartDate:   time.Now().Add(48 * time.Hour),
		EndDate:     time.Now().Add(52 * time.Hour),
		Status:      models.StatusPublished,
	}

	created, err := repo.Create(context.Background(), event)
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}

	return created
}

// createTestProduct creates a product for an event. A nil quantity
// means unlimited stock.
func createTestProduct(t *testing.T, db *sql.DB, eventID int, ptype models.ProductType, price int, quantity *int) *models.Product {
	t.Helper()

	repo := NewProductRepository(db)
	req := &models.ProductCreateRequest{
		EventID:  eventID,
		Type:     ptype,
		Name:     fmt.Sprintf("%s %d", ptype, time.Now().UnixNano()),
		Price:    price,
		Quantity: quantity,
	}

	product, err := repo.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}

	return product
}

func intPointer(v int) *int {
	return &v
}
