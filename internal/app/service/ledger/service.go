package ledger

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/climaxott/ledger/internal/models"
	"github.com/climaxott/ledger/pkg/config"
	"github.com/climaxott/ledger/pkg/logctx"
	"github.com/climaxott/ledger/pkg/tool"
	"github.com/climaxott/ledger/pkg/types"
)

type Service struct {
	cfg *config.Config
	log *zap.SugaredLogger
	db  *gorm.DB
}

func NewService(cfg *config.Config, log *zap.SugaredLogger, db *gorm.DB) Manager {
	return &Service{cfg: cfg, log: log, db: db}
}

func (s *Service) validateSubmit(req *SubmitRequest) error {
	if req == nil {
		return fmt.Errorf("%w: nil request", ErrValidation)
	}
	if req.UserID == "" || req.ContentID == "" || req.TransactionID == "" {
		return fmt.Errorf("%w: missing required fields", ErrValidation)
	}
	if !tool.IsUUID(req.UserID) || !tool.IsUUID(req.ContentID) {
		return fmt.Errorf("%w: malformed entity id", ErrValidation)
	}
	if req.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if req.PaymentType == "" {
		req.PaymentType = types.PaymentTypePremiumContent
	}
	if req.Gateway == "" {
		req.Gateway = types.PaymentGatewayUPI
	}
	if !req.PaymentType.Valid() {
		return fmt.Errorf("%w: unknown payment type %q", ErrValidation, req.PaymentType)
	}
	if !req.Gateway.Valid() {
		return fmt.Errorf("%w: unknown gateway %q", ErrValidation, req.Gateway)
	}
	return nil
}

// checkReferences verifies the referenced user and content exist.
func (s *Service) checkReferences(ctx context.Context, req *SubmitRequest) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", req.UserID).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	if err := s.db.WithContext(ctx).Model(&models.Content{}).Where("id = ?", req.ContentID).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to look up content: %w", err)
	}
	if n == 0 {
		return ErrContentNotFound
	}
	return nil
}

func (s *Service) findByTuple(ctx context.Context, req *SubmitRequest) (*models.Payment, error) {
	var p models.Payment
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND content_id = ? AND payment_type = ?", req.UserID, req.ContentID, req.PaymentType).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	var p models.Payment
	err := s.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResult, error) {
	status := types.PaymentStatusPending
	if s.cfg.Payments.AutoApprove {
		status = types.PaymentStatusApproved
	}
	return s.create(ctx, req, status, "")
}

func (s *Service) CreatePending(ctx context.Context, req *SubmitRequest, paymentURL string) (*SubmitResult, error) {
	return s.create(ctx, req, types.PaymentStatusPending, paymentURL)
}

func (s *Service) create(ctx context.Context, req *SubmitRequest, status types.PaymentStatus, paymentURL string) (*SubmitResult, error) {
	if err := s.validateSubmit(req); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	// Duplicate guard, read side. The unique indexes below remain the
	// authority; these reads only produce friendlier outcomes.
	existing, err := s.findByTuple(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing payment: %w", err)
	}
	if existing != nil {
		logctx.FromCtx(ctx, s.log).Infow("payment_duplicate_tuple",
			"transaction_id", existing.TransactionID, "status", existing.Status)
		return &SubmitResult{Payment: existing, AlreadyPaid: existing.Approved()}, nil
	}

	if other, err := s.GetByTransactionID(ctx, req.TransactionID); err == nil {
		// Same transaction id on a different entitlement tuple. An
		// approved record is returned as success (the caller already
		// paid with this transaction); anything else is a conflict.
		if other.Approved() && other.UserID == req.UserID && other.ContentID == req.ContentID {
			return &SubmitResult{Payment: other, AlreadyPaid: true}, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrTransactionIDReused, req.TransactionID)
	} else if !errors.Is(err, ErrPaymentNotFound) {
		return nil, fmt.Errorf("failed to check transaction id: %w", err)
	}

	p := &models.Payment{
		ID:            tool.GenerateUUIDV7(),
		UserID:        req.UserID,
		ContentID:     req.ContentID,
		Amount:        req.Amount,
		TransactionID: req.TransactionID,
		PaymentType:   req.PaymentType,
		Gateway:       req.Gateway,
		Status:        status,
		PaymentURL:    paymentURL,
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent create. Re-read and map to the
			// already-exists outcome instead of surfacing a 500.
			if winner, e := s.findByTuple(ctx, req); e == nil && winner != nil {
				return &SubmitResult{Payment: winner, AlreadyPaid: winner.Approved()}, nil
			}
			return nil, fmt.Errorf("%w: %s", ErrTransactionIDReused, req.TransactionID)
		}
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("payment_created",
		"payment_id", p.ID, "transaction_id", p.TransactionID,
		"gateway", p.Gateway, "status", p.Status)
	return &SubmitResult{Payment: p, Created: true}, nil
}

func (s *Service) Check(ctx context.Context, userID, contentID string, paymentType types.PaymentType) (bool, *models.Payment, error) {
	if paymentType == "" {
		paymentType = types.PaymentTypePremiumContent
	}
	var p models.Payment
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND content_id = ? AND payment_type = ? AND status = ?",
			userID, contentID, paymentType, types.PaymentStatusApproved).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, nil
		}
		// Distinguish "not entitled" from "couldn't determine entitlement".
		return false, nil, fmt.Errorf("failed to check entitlement: %w", err)
	}
	return true, &p, nil
}

func (s *Service) CheckAny(ctx context.Context, userID, contentID string, paymentType types.PaymentType) (*models.Payment, error) {
	if paymentType == "" {
		paymentType = types.PaymentTypePremiumContent
	}
	p, err := s.findByTuple(ctx, &SubmitRequest{UserID: userID, ContentID: contentID, PaymentType: paymentType})
	if err != nil {
		return nil, fmt.Errorf("failed to check payment: %w", err)
	}
	return p, nil
}

func (s *Service) Approve(ctx context.Context, id string) (*models.Payment, error) {
	return s.transition(ctx, id, types.PaymentStatusApproved)
}

func (s *Service) Decline(ctx context.Context, id string) (*models.Payment, error) {
	return s.transition(ctx, id, types.PaymentStatusDeclined)
}

// transition sets a terminal status on an existing record. Re-applying the
// current status is a no-op success; a record never moves back to pending.
func (s *Service) transition(ctx context.Context, id string, status types.PaymentStatus) (*models.Payment, error) {
	var p models.Payment
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if p.Status == status {
		return &p, nil
	}
	if err := s.db.WithContext(ctx).Model(&p).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	p.Status = status
	logctx.FromCtx(ctx, s.log).Infow("payment_transition",
		"payment_id", p.ID, "transaction_id", p.TransactionID, "status", status)
	return &p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Payment{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete payment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	logctx.FromCtx(ctx, s.log).Infow("payment_deleted", "payment_id", id)
	return nil
}

func (s *Service) ApplyGatewayStatus(ctx context.Context, transactionID string, event types.GatewayEventStatus) (*models.Payment, error) {
	target, ok := event.ToPaymentStatus()
	if !ok {
		return nil, fmt.Errorf("%w: unknown gateway status %q", ErrValidation, event)
	}
	p, err := s.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if p.Status == target {
		// Redelivered webhook; entitlement already settled.
		return p, nil
	}
	if p.Status.Terminal() {
		// Conflicting terminal report. Keep the settled state and leave a
		// trail for reconciliation rather than flip-flopping entitlement.
		logctx.FromCtx(ctx, s.log).Warnw("gateway_status_conflict",
			"transaction_id", transactionID, "current", p.Status, "reported", target)
		return p, nil
	}
	return s.transition(ctx, p.ID, target)
}

func (s *Service) ListEnriched(ctx context.Context) ([]*EnrichedPayment, error) {
	type row struct {
		models.Payment
		UserName     *string
		UserEmail    *string
		ContentTitle *string
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Table("payment").
		Select("payment.*, app_user.name AS user_name, app_user.email AS user_email, content.title AS content_title").
		Joins("LEFT JOIN app_user ON app_user.id = payment.user_id").
		Joins("LEFT JOIN content ON content.id = payment.content_id").
		Order("payment.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	out := make([]*EnrichedPayment, 0, len(rows))
	for _, r := range rows {
		e := &EnrichedPayment{
			ID:            r.ID,
			UserID:        r.UserID,
			ContentID:     r.ContentID,
			Amount:        r.Amount,
			TransactionID: r.TransactionID,
			Gateway:       r.Gateway,
			PaymentType:   r.PaymentType,
			Status:        r.Status,
			CreatedAt:     r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			UserName:      "Unknown",
			UserEmail:     "Unknown",
			ContentTitle:  "Untitled",
		}
		if r.UserName != nil && *r.UserName != "" {
			e.UserName = *r.UserName
		}
		if r.UserEmail != nil && *r.UserEmail != "" {
			e.UserEmail = *r.UserEmail
		}
		if r.ContentTitle != nil && *r.ContentTitle != "" {
			e.ContentTitle = *r.ContentTitle
		}
		out = append(out, e)
	}
	return out, nil
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression.
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// Scan implements paginated/admin listing with filters.
func (s *Service) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.Payment{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	var items []*models.Payment
	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return &ScanResponse{Items: items, Total: total}, nil
}
