package settings

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/climaxott/ledger/internal/models"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Setting{}))
	return New(db)
}

func TestSetGetDelete(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	s, err := svc.Set(ctx, "explore_enabled", json.RawMessage(`true`), "explore page toggle")
	require.NoError(t, err)
	require.Equal(t, "explore_enabled", s.Key)

	got, err := svc.Get(ctx, "explore_enabled")
	require.NoError(t, err)
	require.JSONEq(t, `true`, string(got.Value))

	// Setting the same key replaces the value, no second row.
	s, err = svc.Set(ctx, "explore_enabled", json.RawMessage(`false`), "")
	require.NoError(t, err)
	require.JSONEq(t, `false`, string(s.Value))

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, svc.Delete(ctx, "explore_enabled"))
	_, err = svc.Get(ctx, "explore_enabled")
	require.ErrorIs(t, err, ErrSettingNotFound)
	require.ErrorIs(t, svc.Delete(ctx, "explore_enabled"), ErrSettingNotFound)
}

func TestSet_Validation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Set(ctx, "  ", json.RawMessage(`1`), "")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Set(ctx, "k", json.RawMessage(`{not json`), "")
	require.ErrorIs(t, err, ErrValidation)
}
