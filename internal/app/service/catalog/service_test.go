package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/climaxott/ledger/internal/models"
	"github.com/climaxott/ledger/pkg/types"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Content{}))
	return New(db, zap.NewNop().Sugar())
}

func TestCreateAndGet(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, &UpsertRequest{
		Title:           "Premiere Night",
		Type:            types.ContentTypeMovie,
		PremiumPrice:    9900,
		ClimaxTimestamp: 4200,
	})
	require.NoError(t, err)
	require.True(t, c.IsActive)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, "Premiere Night", got.Title)

	_, err = svc.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrContentNotFound)
}

func TestCreate_Validation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &UpsertRequest{Type: types.ContentTypeMovie})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, &UpsertRequest{Title: "T", Type: types.ContentType("podcast")})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, &UpsertRequest{Title: "T", Type: types.ContentTypeShow, PremiumPrice: -1})
	require.ErrorIs(t, err, ErrValidation)
}

func TestList_FiltersInactive(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &UpsertRequest{Title: "Active", Type: types.ContentTypeMovie})
	require.NoError(t, err)
	inactive := false
	_, err = svc.Create(ctx, &UpsertRequest{Title: "Hidden", Type: types.ContentTypeMovie, IsActive: &inactive})
	require.NoError(t, err)

	items, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Active", items[0].Title)

	items, err = svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestUpdateAndDelete(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, &UpsertRequest{Title: "Old", Type: types.ContentTypeSeries})
	require.NoError(t, err)

	enabled := true
	updated, err := svc.Update(ctx, c.ID, &UpsertRequest{
		Title:              "New",
		PremiumPrice:       4900,
		FestPaymentEnabled: &enabled,
	})
	require.NoError(t, err)
	require.Equal(t, "New", updated.Title)
	require.EqualValues(t, 4900, updated.PremiumPrice)
	require.True(t, updated.FestPaymentEnabled)
	// Untouched fields survive partial updates.
	require.Equal(t, types.ContentTypeSeries, updated.Type)

	_, err = svc.Update(ctx, "missing", &UpsertRequest{Title: "X"})
	require.ErrorIs(t, err, ErrContentNotFound)

	require.NoError(t, svc.Delete(ctx, c.ID))
	require.ErrorIs(t, svc.Delete(ctx, c.ID), ErrContentNotFound)
}
