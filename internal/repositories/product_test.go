package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

func TestProductRepository_Create_Unlimited(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	organizer := createTestUser(t, db, models.RoleOrganizer)
	event := createTestEvent(t, db, organizer.ID)

	product := createTestProduct(t, db, event.ID, models.ProductMerchandise, 1500, nil)
	assert.Nil(t, product.Quantity)
	assert.True(t, product.IsUnlimited())
	assert.True(t, product.IsAvailable())

	reloaded, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.Quantity)
}

func TestProductRepository_Create_Capped(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	organizer := createTestUser(t, db, models.RoleOrganizer)
	event := createTestEvent(t, db, organizer.ID)

	product := createTestProduct(t, db, event.ID, models.ProductVendorSpot, 5000, intPointer(10))
	require.NotNil(t, product.Quantity)
	assert.Equal(t, 10, *product.Quantity)
	assert.Equal(t, 0, product.Sold)

	reloaded, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Quantity)
	assert.Equal(t, 10, *reloaded.Quantity)
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)

	_, err := repo.GetByID(context.Background(), -1)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestProductRepository_GetByEvent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	organizer := createTestUser(t, db, models.RoleOrganizer)
	event := createTestEvent(t, db, organizer.ID)

	first := createTestProduct(t, db, event.ID, models.ProductTicket, 2500, intPointer(100))
	second := createTestProduct(t, db, event.ID, models.ProductVolunteerShift, 0, intPointer(20))

	products, err := repo.GetByEvent(ctx, event.ID, false)
	require.NoError(t, err)
	require.Len(t, products, 2)
	// Creation order preserved
	assert.Equal(t, first.ID, products[0].ID)
	assert.Equal(t, second.ID, products[1].ID)

	// Deactivate one, activeOnly filters it out
	_, err = repo.Update(ctx, second.ID, &models.ProductUpdateRequest{
		Name:     second.Name,
		Price:    second.Price,
		Quantity: second.Quantity,
		Active:   false,
	})
	require.NoError(t, err)

	active, err := repo.GetByEvent(ctx, event.ID, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)
}

func TestProductRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	organizer := createTestUser(t, db, models.RoleOrganizer)
	event := createTestEvent(t, db, organizer.ID)
	product := createTestProduct(t, db, event.ID, models.ProductAddon, 800, intPointer(50))

	// Switching to nil quantity makes the product unlimited
	updated, err := repo.Update(ctx, product.ID, &models.ProductUpdateRequest{
		Name:        "Parking Pass",
		Description: "All-day parking",
		Price:       1000,
		Quantity:    nil,
		Active:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Parking Pass", updated.Name)
	assert.Equal(t, 1000, updated.Price)
	assert.Nil(t, updated.Quantity)
}

func TestProductRepository_Delete_GuardsSold(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	organizer := createTestUser(t, db, models.RoleOrganizer)
	event := createTestEvent(t, db, organizer.ID)
	product := createTestProduct(t, db, event.ID, models.ProductTicket, 2500, intPointer(100))

	_, err := db.Exec("UPDATE products SET sold = 1 WHERE id = $1", product.ID)
	require.NoError(t, err)

	err = repo.Delete(ctx, product.ID)
	assert.Error(t, err)

	// Unsold products delete fine
	fresh := createTestProduct(t, db, event.ID, models.ProductTicket, 2500, intPointer(100))
	require.NoError(t, repo.Delete(ctx, fresh.ID))
	_, err = repo.GetByID(ctx, fresh.ID)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestProductRepository_CountSoldByEvent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	organizer := createTestUser(t, db, models.RoleOrganizer)
	event := createTestEvent(t, db, organizer.ID)

	tickets := createTestProduct(t, db, event.ID, models.ProductTicket, 2500, intPointer(100))
	createTestProduct(t, db, event.ID, models.ProductMerchandise, 1500, nil)

	_, err := db.Exec("UPDATE products SET sold = 7 WHERE id = $1", tickets.ID)
	require.NoError(t, err)

	counts, err := repo.CountSoldByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, counts[models.ProductTicket])
	assert.Equal(t, 0, counts[models.ProductMerchandise])
}
