package cart

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

	// One connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, price float64, stock int) *models.Product {
	t.Helper()
	p := models.Product{Name: "frame", Description: "wooden frame", Price: price, Stock: stock}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func TestResolveAnonymousReusesSessionCart(t *testing.T) {
	svc := &Service{DB: newTestDB(t)}
	ctx := context.Background()
	id := Identity{SessionKey: "sess-1"}

	first, err := svc.Resolve(ctx, id)
	require.NoError(t, err)

	second, err := svc.Resolve(ctx, id)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestResolveRejectsEmptyIdentity(t *testing.T) {
	svc := &Service{DB: newTestDB(t)}

	_, err := svc.Resolve(context.Background(), Identity{})
	require.ErrorIs(t, err, ErrValidation)
}

func TestResolveClaimsSessionCartOnLogin(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()
	p := seedProduct(t, db, 100, 10)

	anon := Identity{SessionKey: "sess-2"}
	_, err := svc.Add(ctx, anon, p.ID, 2)
	require.NoError(t, err)

	authed := Identity{UserID: 7, SessionKey: "sess-2"}
	claimed, err := svc.Resolve(ctx, authed)
	require.NoError(t, err)

	require.NotNil(t, claimed.UserID)
	require.Equal(t, uint(7), *claimed.UserID)
	require.Nil(t, claimed.SessionKey)

	// The items came along with the cart.
	_, lines, _, err := svc.Detail(ctx, authed)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, uint(2), lines[0].Item.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.Cart{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestResolveAnonymousAfterClaimStartsFresh(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	_, err := svc.Resolve(ctx, Identity{SessionKey: "sess-3"})
	require.NoError(t, err)
	claimed, err := svc.Resolve(ctx, Identity{UserID: 9, SessionKey: "sess-3"})
	require.NoError(t, err)

	// The old session key resolves to a brand new cart, not the claimed one.
	fresh, err := svc.Resolve(ctx, Identity{SessionKey: "sess-3"})
	require.NoError(t, err)
	require.NotEqual(t, claimed.ID, fresh.ID)
	require.Nil(t, fresh.UserID)
}

func TestAddMergesSameProduct(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()
	p := seedProduct(t, db, 50, 100)
	id := Identity{UserID: 1}

	_, err := svc.Add(ctx, id, p.ID, 2)
	require.NoError(t, err)
	item, err := svc.Add(ctx, id, p.ID, 3)
	require.NoError(t, err)
	require.Equal(t, uint(5), item.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestAddUnknownProduct(t *testing.T) {
	svc := &Service{DB: newTestDB(t)}

	_, err := svc.Add(context.Background(), Identity{UserID: 1}, 999, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddNormalizesQuantity(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}
	p := seedProduct(t, db, 10, 10)

	item, err := svc.Add(context.Background(), Identity{UserID: 1}, p.ID, -4)
	require.NoError(t, err)
	require.Equal(t, uint(1), item.Quantity)
}

func TestUpdateLineClampsToStock(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()
	p := seedProduct(t, db, 10, 5)
	id := Identity{UserID: 1}

	line, err := svc.Add(ctx, id, p.ID, 1)
	require.NoError(t, err)

	updated, clamped, err := svc.UpdateLine(ctx, id, line.ID, 10)
	require.NoError(t, err)
	require.True(t, clamped)
	require.Equal(t, uint(5), updated.Quantity)
}

func TestUpdateLineZeroDeletes(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()
	p := seedProduct(t, db, 10, 5)
	id := Identity{UserID: 1}

	line, err := svc.Add(ctx, id, p.ID, 2)
	require.NoError(t, err)

	updated, clamped, err := svc.UpdateLine(ctx, id, line.ID, 0)
	require.NoError(t, err)
	require.False(t, clamped)
	require.Nil(t, updated)

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestRemoveLineScopedToOwnCart(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()
	p := seedProduct(t, db, 10, 5)

	line, err := svc.Add(ctx, Identity{UserID: 1}, p.ID, 1)
	require.NoError(t, err)

	// Another user cannot delete it by ID.
	err = svc.RemoveLine(ctx, Identity{UserID: 2}, line.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.RemoveLine(ctx, Identity{UserID: 1}, line.ID))
}

func TestDetailUsesLivePrices(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()
	p := seedProduct(t, db, 100, 10)
	id := Identity{UserID: 1}

	_, err := svc.Add(ctx, id, p.ID, 3)
	require.NoError(t, err)

	_, lines, total, err := svc.Detail(ctx, id)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, 300.0, total)

	// A catalog price change shows up immediately.
	require.NoError(t, db.Model(p).Update("price", 120).Error)
	total, err = svc.TotalPrice(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 360.0, total)
}
