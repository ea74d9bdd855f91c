package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/climaxott/ledger/internal/models"
	"github.com/climaxott/ledger/pkg/tool"
	"github.com/climaxott/ledger/pkg/types"
)

var (
	ErrContentNotFound = errors.New("content not found")
	ErrValidation      = errors.New("validation failed")
)

type UpsertRequest struct {
	Title                string            `json:"title"`
	Description          string            `json:"description"`
	VideoURL             string            `json:"videoUrl"`
	Thumbnail            string            `json:"thumbnail"`
	Category             string            `json:"category"`
	Type                 types.ContentType `json:"type"`
	DurationSeconds      int64             `json:"duration"`
	ClimaxTimestamp      int64             `json:"climaxTimestamp"`
	Language             string            `json:"language"`
	PremiumPrice         int64             `json:"premiumPrice"`
	IsActive             *bool             `json:"isActive"`
	FestPaymentEnabled   *bool             `json:"festPaymentEnabled"`
	FestParticipationFee int64             `json:"festParticipationFee"`
}

// Service manages the content catalog: the titles premium payments
// unlock and fan fests users pay to join.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

func (s *Service) List(ctx context.Context, includeInactive bool) ([]*models.Content, error) {
	q := s.db.WithContext(ctx).Model(&models.Content{})
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var items []*models.Content
	if err := q.Order("created_at desc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Content, error) {
	var c models.Content
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to load content: %w", err)
	}
	return &c, nil
}

func (s *Service) Create(ctx context.Context, req *UpsertRequest) (*models.Content, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: invalid content type: %s", ErrValidation, req.Type)
	}
	if req.PremiumPrice < 0 || req.FestParticipationFee < 0 {
		return nil, fmt.Errorf("%w: prices must not be negative", ErrValidation)
	}

	c := &models.Content{
		ID:                   tool.GenerateUUIDV7(),
		Title:                strings.TrimSpace(req.Title),
		Description:          req.Description,
		VideoURL:             req.VideoURL,
		Thumbnail:            req.Thumbnail,
		Category:             req.Category,
		Type:                 req.Type,
		DurationSeconds:      req.DurationSeconds,
		ClimaxTimestamp:      req.ClimaxTimestamp,
		Language:             req.Language,
		PremiumPrice:         req.PremiumPrice,
		IsActive:             true,
		FestParticipationFee: req.FestParticipationFee,
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if req.FestPaymentEnabled != nil {
		c.FestPaymentEnabled = *req.FestPaymentEnabled
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("failed to create content: %w", err)
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id string, req *UpsertRequest) (*models.Content, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != "" {
		c.Title = strings.TrimSpace(req.Title)
	}
	if req.Description != "" {
		c.Description = req.Description
	}
	if req.VideoURL != "" {
		c.VideoURL = req.VideoURL
	}
	if req.Thumbnail != "" {
		c.Thumbnail = req.Thumbnail
	}
	if req.Category != "" {
		c.Category = req.Category
	}
	if req.Type != "" {
		if !req.Type.Valid() {
			return nil, fmt.Errorf("%w: invalid content type: %s", ErrValidation, req.Type)
		}
		c.Type = req.Type
	}
	if req.DurationSeconds > 0 {
		c.DurationSeconds = req.DurationSeconds
	}
	if req.ClimaxTimestamp > 0 {
		c.ClimaxTimestamp = req.ClimaxTimestamp
	}
	if req.Language != "" {
		c.Language = req.Language
	}
	if req.PremiumPrice > 0 {
		c.PremiumPrice = req.PremiumPrice
	}
	if req.FestParticipationFee > 0 {
		c.FestParticipationFee = req.FestParticipationFee
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if req.FestPaymentEnabled != nil {
		c.FestPaymentEnabled = *req.FestPaymentEnabled
	}
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, fmt.Errorf("failed to update content: %w", err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Content{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete content: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrContentNotFound
	}
	return nil
}

var Module = fx.Options(
	fx.Provide(New),
)
