package dashboard

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
		&models.FrameOrder{},
		&models.PlaqueOrder{},
	))
	return db
}

func TestComputeEmpty(t *testing.T) {
	svc := &Service{DB: newTestDB(t)}

	totals, err := svc.Compute(context.Background())
	require.NoError(t, err)
	require.Equal(t, &Totals{}, totals)
}

func TestComputeCountsOnlyPaidStatuses(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}

	// Processing catalog order counts as revenue.
	require.NoError(t, db.Create(&models.Order{
		UserID: 1, ShippingMethod: "standard", PaymentMethod: "cod",
		TotalPrice: 500, Status: models.StatusProcessing,
	}).Error)

	// Pending frame order awaits payment, so its money is not realized.
	require.NoError(t, db.Create(&models.FrameOrder{
		UserID: 1, UploadedImage: "uploads/p.jpg", SizeOption: "8x10",
		TotalPrice: 300, Status: models.StatusPending,
	}).Error)

	// Shipped plaque order counts by its final price.
	require.NoError(t, db.Create(&models.PlaqueOrder{
		UserID: 1, DeceasedName: "Somsak", DeceasedPhoto: "uploads/s.jpg",
		Price: 1700, FinalPrice: 1700, Status: models.StatusShipped,
	}).Error)

	totals, err := svc.Compute(context.Background())
	require.NoError(t, err)

	require.Equal(t, 500.0, totals.SalesGeneral)
	require.Equal(t, 0.0, totals.SalesFraming)
	require.Equal(t, 1700.0, totals.SalesPlaque)
	require.Equal(t, 2200.0, totals.GrandTotal)
	require.EqualValues(t, 3, totals.TotalOrders)
	require.EqualValues(t, 1, totals.PendingCount)
}

func TestComputeIgnoresCancelled(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}

	require.NoError(t, db.Create(&models.Order{
		UserID: 1, ShippingMethod: "standard", PaymentMethod: "cod",
		TotalPrice: 900, Status: models.StatusCancelled,
	}).Error)

	totals, err := svc.Compute(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0.0, totals.GrandTotal)
	require.EqualValues(t, 1, totals.TotalOrders)
	require.EqualValues(t, 0, totals.PendingCount)
}
