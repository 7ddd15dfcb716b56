package orders

import (
	"encoding/json"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"little-lemon-api/cart"
	"little-lemon-api/config"
	"little-lemon-api/errs"
	"little-lemon-api/models"
	"little-lemon-api/roles"
)

type fixture struct {
	db       *gorm.DB
	registry *roles.Registry
	ledger   *cart.Ledger
	svc      *Service

	alice roles.Principal // customer
	bob   roles.Principal // delivery crew
	mia   roles.Principal // manager

	pasta models.MenuItem // 12.50
	soup  models.MenuItem // 5.00
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	f := &fixture{db: db, registry: roles.NewRegistry(db)}
	f.ledger = cart.NewLedger(db)
	f.svc = NewService(db, f.registry)

	f.alice = f.user(t, "alice@example.com", roles.Customer)
	f.bob = f.user(t, "bob@example.com", roles.DeliveryCrew)
	f.mia = f.user(t, "mia@example.com", roles.Manager)

	category := models.Category{Slug: "mains", Title: "Mains"}
	require.NoError(t, db.Create(&category).Error)
	f.pasta = models.MenuItem{Title: "Pasta", Price: decimal.RequireFromString("12.50"), CategoryID: category.ID}
	f.soup = models.MenuItem{Title: "Soup", Price: decimal.RequireFromString("5.00"), CategoryID: category.ID}
	require.NoError(t, db.Create(&f.pasta).Error)
	require.NoError(t, db.Create(&f.soup).Error)
	return f
}

func (f *fixture) user(t *testing.T, email string, role roles.Role) roles.Principal {
	t.Helper()
	u := models.User{Name: email, Email: email, PasswordHash: "x"}
	require.NoError(t, f.db.Create(&u).Error)
	require.NoError(t, f.registry.Grant(u.ID, role))
	set, err := f.registry.RolesOf(u.ID)
	require.NoError(t, err)
	return roles.Principal{UserID: u.ID, Name: u.Name, Email: email, Roles: set}
}

func (f *fixture) fillAliceCart(t *testing.T) {
	t.Helper()
	_, err := f.ledger.Add(f.alice.UserID, f.pasta.ID, 2) // 25.00
	require.NoError(t, err)
	_, err = f.ledger.Add(f.alice.UserID, f.soup.ID, 1) // 5.00
	require.NoError(t, err)
}

func TestPlaceConvertsCart(t *testing.T) {
	f := newFixture(t)
	f.fillAliceCart(t)

	order, err := f.svc.Place(f.alice.UserID)
	require.NoError(t, err)

	assert.Equal(t, f.alice.UserID, order.UserID)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Nil(t, order.DeliveryCrewID)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("30.00")), "total was %s", order.Total)

	require.Len(t, order.Items, 2)
	byItem := map[uint]models.OrderItem{}
	for _, it := range order.Items {
		byItem[it.MenuItemID] = it
	}
	assert.Equal(t, 2, byItem[f.pasta.ID].Quantity)
	assert.True(t, byItem[f.pasta.ID].Price.Equal(decimal.RequireFromString("25.00")))
	assert.True(t, byItem[f.pasta.ID].UnitPrice.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, 1, byItem[f.soup.ID].Quantity)
	assert.True(t, byItem[f.soup.ID].Price.Equal(decimal.RequireFromString("5.00")))

	// the cart is emptied by the same transaction
	lines, err := f.ledger.List(f.alice.UserID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	// initial history row recorded
	var history []models.OrderStatusHistory
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusPending, history[0].ToStatus)
}

func TestPlaceEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Place(f.alice.UserID)
	assert.ErrorIs(t, err, errs.ErrEmptyCart)

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlaceTotalImmuneToLaterPriceChange(t *testing.T) {
	f := newFixture(t)
	f.fillAliceCart(t)

	require.NoError(t, f.db.Model(&models.MenuItem{}).
		Where("id = ?", f.pasta.ID).
		Update("price", decimal.RequireFromString("99.99")).Error)

	order, err := f.svc.Place(f.alice.UserID)
	require.NoError(t, err)
	// cart lines were snapshotted before the price change
	assert.True(t, order.Total.Equal(decimal.RequireFromString("30.00")))
}

func TestPlaceKeepsLineAddedDuringConversion(t *testing.T) {
	f := newFixture(t)
	f.fillAliceCart(t)

	bread := models.MenuItem{Title: "Bread", Price: decimal.RequireFromString("2.50"), CategoryID: f.pasta.CategoryID}
	require.NoError(t, f.db.Create(&bread).Error)

	// sneak a new cart line in between the conversion's cart read and its
	// delete, the way a concurrent add would land
	fired := false
	err := f.db.Callback().Delete().Before("gorm:delete").Register("test_concurrent_cart_add", func(db *gorm.DB) {
		if fired {
			return
		}
		if _, ok := db.Statement.Dest.(*models.Cart); !ok {
			return
		}
		fired = true
		line := models.Cart{
			UserID:     f.alice.UserID,
			MenuItemID: bread.ID,
			Quantity:   1,
			UnitPrice:  bread.Price,
			Price:      bread.Price,
		}
		db.Session(&gorm.Session{NewDB: true, SkipHooks: true}).Create(&line)
	})
	require.NoError(t, err)
	defer f.db.Callback().Delete().Remove("test_concurrent_cart_add")

	order, err := f.svc.Place(f.alice.UserID)
	require.NoError(t, err)
	require.True(t, fired)

	// only the two lines that were read became order items
	assert.Len(t, order.Items, 2)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("30.00")))

	// the line added mid-conversion survives in the cart instead of being
	// deleted unconverted
	lines, err := f.ledger.List(f.alice.UserID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, bread.ID, lines[0].MenuItemID)
}

func TestListForRoleFiltering(t *testing.T) {
	f := newFixture(t)

	f.fillAliceCart(t)
	aliceOrder, err := f.svc.Place(f.alice.UserID)
	require.NoError(t, err)

	carol := f.user(t, "carol@example.com", roles.Customer)
	_, err = f.ledger.Add(carol.UserID, f.soup.ID, 1)
	require.NoError(t, err)
	carolOrder, err := f.svc.Place(carol.UserID)
	require.NoError(t, err)

	// assign bob to carol's order
	_, err = f.svc.Replace(f.mia, carolOrder.ID, ReplaceRequest{
		DeliveryCrewID: &f.bob.UserID,
		Status:         models.StatusPending,
	})
	require.NoError(t, err)

	managerSees, err := f.svc.ListFor(f.mia)
	require.NoError(t, err)
	assert.Len(t, managerSees, 2)

	crewSees, err := f.svc.ListFor(f.bob)
	require.NoError(t, err)
	require.Len(t, crewSees, 1)
	assert.Equal(t, carolOrder.ID, crewSees[0].ID)

	aliceSees, err := f.svc.ListFor(f.alice)
	require.NoError(t, err)
	require.Len(t, aliceSees, 1)
	assert.Equal(t, aliceOrder.ID, aliceSees[0].ID)
}

func TestGetOwnerOnly(t *testing.T) {
	f := newFixture(t)
	f.fillAliceCart(t)
	order, err := f.svc.Place(f.alice.UserID)
	require.NoError(t, err)

	got, err := f.svc.Get(f.alice, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	// even a manager is forbidden on another customer's order detail
	_, err = f.svc.Get(f.mia, order.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	_, err = f.svc.Get(f.alice, 9999)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestPatchStatusSingleFieldOnly(t *testing.T) {
	f := newFixture(t)
	f.fillAliceCart(t)
	order, err := f.svc.Place(f.alice.UserID)
	require.NoError(t, err)

	// touching anything besides status is rejected before any write
	multi := map[string]json.RawMessage{
		"status": json.RawMessage("1"),
		"total":  json.RawMessage("999"),
	}
	_, err = f.svc.PatchStatus(f.bob, order.ID, multi)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	reloaded, err := f.svc.Get(f.alice, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, reloaded.Status)
	assert.True(t, reloaded.Total.Equal(decimal.RequireFromString("30.00")))

	// a lone status field succeeds
	patched, err := f.svc.PatchStatus(f.bob, order.ID, map[string]json.RawMessage{
		"status": json.RawMessage("1"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, patched.Status)

	var history []models.OrderStatusHistory
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Order("id asc").Find(&history).Error)
	require.Len(t, history, 2)
	assert.Equal(t, models.StatusDelivered, history[1].ToStatus)
	assert.Equal(t, f.bob.UserID, history[1].ChangedBy)
}

func TestPatchStatusCrewNotScopedToAssignment(t *testing.T) {
	f := newFixture(t)
	f.fillAliceCart(t)
	order, err := f.svc.Place(f.alice.UserID)
	require.NoError(t, err)

	// bob is not assigned to this order yet the patch goes through
	_, err = f.svc.PatchStatus(f.bob, order.ID, map[string]json.RawMessage{
		"status": json.RawMessage("1"),
	})
	assert.NoError(t, err)
}

func TestReplaceValidatesCrew(t *testing.T) {
	f := newFixture(t)
	f.fillAliceCart(t)
	order, err := f.svc.Place(f.alice.UserID)
	require.NoError(t, err)

	// alice is not delivery crew
	_, err = f.svc.Replace(f.mia, order.ID, ReplaceRequest{
		DeliveryCrewID: &f.alice.UserID,
		Status:         models.StatusPending,
	})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	updated, err := f.svc.Replace(f.mia, order.ID, ReplaceRequest{
		DeliveryCrewID: &f.bob.UserID,
		Status:         models.StatusDelivered,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.DeliveryCrewID)
	assert.Equal(t, f.bob.UserID, *updated.DeliveryCrewID)
	assert.Equal(t, models.StatusDelivered, updated.Status)

	_, err = f.svc.Replace(f.mia, order.ID, ReplaceRequest{Status: models.OrderStatus(5)})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestStatusHistoryRecordsActualPriorStatus(t *testing.T) {
	f := newFixture(t)
	f.fillAliceCart(t)
	order, err := f.svc.Place(f.alice.UserID)
	require.NoError(t, err)

	_, err = f.svc.PatchStatus(f.bob, order.ID, map[string]json.RawMessage{
		"status": json.RawMessage("1"),
	})
	require.NoError(t, err)

	_, err = f.svc.Replace(f.mia, order.ID, ReplaceRequest{
		DeliveryCrewID: &f.bob.UserID,
		Status:         models.StatusPending,
	})
	require.NoError(t, err)

	_, err = f.svc.PatchStatus(f.mia, order.ID, map[string]json.RawMessage{
		"status": json.RawMessage("1"),
	})
	require.NoError(t, err)

	var history []models.OrderStatusHistory
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Order("id asc").Find(&history).Error)
	require.Len(t, history, 4)

	// every row records the status actually replaced at write time
	assert.Equal(t, models.StatusPending, history[1].FromStatus)
	assert.Equal(t, models.StatusDelivered, history[1].ToStatus)
	assert.Equal(t, models.StatusDelivered, history[2].FromStatus)
	assert.Equal(t, models.StatusPending, history[2].ToStatus)
	assert.Equal(t, models.StatusPending, history[3].FromStatus)
	assert.Equal(t, models.StatusDelivered, history[3].ToStatus)
}

func TestDeleteCascades(t *testing.T) {
	f := newFixture(t)
	f.fillAliceCart(t)
	order, err := f.svc.Place(f.alice.UserID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(order.ID))

	var itemCount, historyCount int64
	require.NoError(t, f.db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error)
	require.NoError(t, f.db.Model(&models.OrderStatusHistory{}).Where("order_id = ?", order.ID).Count(&historyCount).Error)
	assert.Zero(t, itemCount)
	assert.Zero(t, historyCount)

	assert.ErrorIs(t, f.svc.Delete(order.ID), errs.ErrNotFound)
}
