package ledger

import (
	"context"
	"errors"

	"github.com/climaxott/ledger/internal/models"
	"github.com/climaxott/ledger/pkg/types"
)

var (
	// ErrValidation marks a submission with missing or malformed fields.
	ErrValidation = errors.New("invalid payment submission")
	// ErrTransactionIDReused marks a transaction id already bound to a
	// different (user, content) entitlement.
	ErrTransactionIDReused = errors.New("transaction id already used")
	// ErrPaymentNotFound marks a lookup by unknown payment or transaction id.
	ErrPaymentNotFound = errors.New("payment not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrContentNotFound = errors.New("content not found")
)

// SubmitRequest is a client-initiated payment submission.
type SubmitRequest struct {
	UserID        string               `json:"userId"`
	ContentID     string               `json:"contentId"`
	Amount        int64                `json:"amount"`
	TransactionID string               `json:"transactionId"`
	PaymentType   types.PaymentType    `json:"paymentType"`
	Gateway       types.PaymentGateway `json:"gateway"`
}

// SubmitResult reports the outcome of a submission. A duplicate submission
// is not an error: the existing record is returned with Created=false.
type SubmitResult struct {
	Payment *models.Payment
	// Created is true when a new ledger row was persisted.
	Created bool
	// AlreadyPaid is true when an approved record for the same
	// (user, content, paymentType) tuple already existed.
	AlreadyPaid bool
}

// Paid reports whether the user holds the entitlement after this submission.
func (r *SubmitResult) Paid() bool {
	return r != nil && r.Payment.Approved()
}

// EnrichedPayment is the admin listing row: a ledger entry joined with the
// referenced user and content names.
type EnrichedPayment struct {
	ID            string               `json:"_id"`
	UserID        string               `json:"userId"`
	ContentID     string               `json:"contentId"`
	Amount        int64                `json:"amount"`
	TransactionID string               `json:"transactionId"`
	Gateway       types.PaymentGateway `json:"gateway"`
	PaymentType   types.PaymentType    `json:"paymentType"`
	Status        types.PaymentStatus  `json:"status"`
	CreatedAt     string               `json:"createdAt"`
	UserName      string               `json:"userName"`
	UserEmail     string               `json:"userEmail"`
	ContentTitle  string               `json:"contentTitle"`
}

// ScanRequest is the filtered/paginated admin listing request.
type ScanRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanResponse struct {
	Items []*models.Payment `json:"items"`
	Total int64             `json:"total"`
}

// Manager is the payment ledger: duplicate-guarded submission, approval
// state transitions, and the entitlement access check.
type Manager interface {
	// Submit records a payment attempt, applying the duplicate guard and
	// the auto-approve policy.
	Submit(ctx context.Context, req *SubmitRequest) (*SubmitResult, error)
	// CreatePending records a gateway-initiated payment in pending state,
	// to be resolved later by webhook or verification.
	CreatePending(ctx context.Context, req *SubmitRequest, paymentURL string) (*SubmitResult, error)
	// Check answers whether the user holds unlock rights to the content.
	Check(ctx context.Context, userID, contentID string, paymentType types.PaymentType) (bool, *models.Payment, error)
	// CheckAny reports any ledger entry for the tuple regardless of status.
	CheckAny(ctx context.Context, userID, contentID string, paymentType types.PaymentType) (*models.Payment, error)
	// Approve and Decline are the admin state transitions.
	Approve(ctx context.Context, id string) (*models.Payment, error)
	Decline(ctx context.Context, id string) (*models.Payment, error)
	// Delete hard-deletes a record (admin rejection).
	Delete(ctx context.Context, id string) error
	// ApplyGatewayStatus applies a gateway-reported terminal status to the
	// record holding the transaction id. Idempotent under redelivery.
	ApplyGatewayStatus(ctx context.Context, transactionID string, event types.GatewayEventStatus) (*models.Payment, error)
	// GetByTransactionID resolves a ledger entry from a gateway reference.
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error)
	// ListEnriched returns all entries newest-first with user/content names.
	ListEnriched(ctx context.Context) ([]*EnrichedPayment, error)
	// Scan is the filtered/paginated admin listing.
	Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error)
}
