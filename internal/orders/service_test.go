package orders

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Jirayuth/frame_shop/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Order{},
		&models.OrderItem{},
		&models.FrameOrder{},
		&models.PlaqueOrder{},
	))
	return db
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"generic", "frame", "plaque"} {
		k, err := ParseKind(s)
		require.NoError(t, err)
		require.Equal(t, Kind(s), k)
	}

	_, err := ParseKind("warranty")
	require.ErrorIs(t, err, ErrValidation)
}

func TestSetStatus(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	order := models.Order{UserID: 1, ShippingMethod: "pickup", PaymentMethod: "cod", Status: models.StatusPending}
	require.NoError(t, db.Create(&order).Error)

	require.NoError(t, svc.SetStatus(ctx, KindGeneric, order.ID, models.StatusShipped))

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	require.Equal(t, models.StatusShipped, got.Status)

	// Cancelling a shipped order is allowed; only the value is checked.
	require.NoError(t, svc.SetStatus(ctx, KindGeneric, order.ID, models.StatusCancelled))
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}

	order := models.Order{UserID: 1, ShippingMethod: "pickup", PaymentMethod: "cod", Status: models.StatusPending}
	require.NoError(t, db.Create(&order).Error)

	err := svc.SetStatus(context.Background(), KindGeneric, order.ID, "done")
	require.ErrorIs(t, err, ErrValidation)
}

func TestSetStatusMissingOrder(t *testing.T) {
	svc := &Service{DB: newTestDB(t)}

	err := svc.SetStatus(context.Background(), KindFrame, 42, models.StatusProcessing)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteGenericRemovesLines(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	order := models.Order{UserID: 1, ShippingMethod: "pickup", PaymentMethod: "cod", Status: models.StatusPending}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&models.OrderItem{OrderID: order.ID, ProductID: 1, Quantity: 2, UnitPrice: 100}).Error)

	require.NoError(t, svc.Delete(ctx, KindGeneric, order.ID))

	var items int64
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&items).Error)
	require.EqualValues(t, 0, items)

	require.ErrorIs(t, svc.Delete(ctx, KindGeneric, order.ID), ErrNotFound)
}

func TestDeletePlaque(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	order := models.PlaqueOrder{UserID: 1, DeceasedName: "Somsak", DeceasedPhoto: "uploads/p.jpg", Status: models.StatusPending}
	require.NoError(t, db.Create(&order).Error)

	require.NoError(t, svc.Delete(ctx, KindPlaque, order.ID))
	require.ErrorIs(t, svc.Delete(ctx, KindPlaque, order.ID), ErrNotFound)
}

func TestListForUser(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	for _, uid := range []uint{1, 1, 2} {
		require.NoError(t, db.Create(&models.Order{
			UserID: uid, ShippingMethod: "pickup", PaymentMethod: "cod", Status: models.StatusPending,
		}).Error)
	}

	mine, err := svc.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, o := range mine {
		require.Equal(t, uint(1), o.UserID)
	}
}
