package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/fx"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/climaxott/ledger/internal/models"
	"github.com/climaxott/ledger/pkg/tool"
)

var (
	ErrSettingNotFound = errors.New("setting not found")
	ErrValidation      = errors.New("validation failed")
)

// Service stores runtime toggles admins flip without a deploy, keyed by
// name with a free-form JSON value.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(ctx context.Context) ([]*models.Setting, error) {
	var items []*models.Setting
	if err := s.db.WithContext(ctx).Order("key").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to load setting: %w", err)
	}
	return &setting, nil
}

// Set creates the setting or replaces its value if the key exists.
func (s *Service) Set(ctx context.Context, key string, value json.RawMessage, description string) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: key is required", ErrValidation)
	}
	if !json.Valid(value) {
		return nil, fmt.Errorf("%w: value must be valid JSON", ErrValidation)
	}

	existing, err := s.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrSettingNotFound) {
		return nil, err
	}
	if existing != nil {
		existing.Value = datatypes.JSON(value)
		if description != "" {
			existing.Description = description
		}
		if err := s.db.WithContext(ctx).Save(existing).Error; err != nil {
			return nil, fmt.Errorf("failed to update setting: %w", err)
		}
		return existing, nil
	}

	setting := &models.Setting{
		ID:          tool.GenerateUUIDV7(),
		Key:         key,
		Value:       datatypes.JSON(value),
		Description: description,
	}
	if err := s.db.WithContext(ctx).Create(setting).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent Set for the same key.
			return s.Set(ctx, key, value, description)
		}
		return nil, fmt.Errorf("failed to create setting: %w", err)
	}
	return setting, nil
}

func (s *Service) Delete(ctx context.Context, key string) error {
	res := s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.Setting{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete setting: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSettingNotFound
	}
	return nil
}

var Module = fx.Options(
	fx.Provide(New),
)
