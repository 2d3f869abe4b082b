package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/moebelhaus/shop-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store := NewStore(db)
	require.NoError(t, store.AutoMigrate(context.Background()))
	return store
}

func strPtr(s string) *string { return &s }

func TestNilStoreIsUnavailable(t *testing.T) {
	ctx := context.Background()
	var store *Store

	_, err := store.ListCategories(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = NewStore(nil).GetOrderByID(ctx, 1)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, apperr.IsKind(err, apperr.KindUnavailable))

	_, _, err = NewStore(nil).CreateOrder(ctx, &models.Order{OrderNumber: "ORD-1"}, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUpsertUserOwnerBecomesAdmin(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	owner, err := store.UpsertUser(ctx, Identity{OpenID: "owner-1", Name: strPtr("Inhaber")}, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, owner.Role)

	customer, err := store.UpsertUser(ctx, Identity{OpenID: "cust-1", Email: strPtr("a@example.com")}, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, customer.Role)

	// 第二次登入只更新提供的欄位
	again, err := store.UpsertUser(ctx, Identity{OpenID: "cust-1", Name: strPtr("Anna")}, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, again.ID)
	assert.Equal(t, "Anna", again.DisplayName())
	assert.Equal(t, "a@example.com", again.EmailAddress())

	_, err = store.UpsertUser(ctx, Identity{}, "owner-1")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestUpdateUserRole(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	user, err := store.UpsertUser(ctx, Identity{OpenID: "u1"}, "")
	require.NoError(t, err)

	updated, err := store.UpdateUserRole(ctx, user.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin())

	_, err = store.UpdateUserRole(ctx, user.ID, "superuser")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = store.UpdateUserRole(ctx, 999, models.RoleUser)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Eiche Esstisch":        "eiche-esstisch",
		"Stuhl Set (4 Stück)":   "stuhl-set-4-stueck",
		"Größe & Maß":           "groesse-mass",
		"  Café Crème  ":        "cafe-creme",
		"Sofa -- 3-Sitzer!!":    "sofa-3-sitzer",
		"Lounge Chair No. 1990": "lounge-chair-no-1990",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}
