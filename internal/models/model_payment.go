package models

import (
	"time"

	"github.com/climaxott/ledger/pkg/types"
)

// Payment is one entry in the payment ledger: a single unlock attempt by a
// user for a content item. The ledger is the source of truth for
// entitlement decisions; an approved row IS the entitlement.
//
// Uniqueness is enforced at the storage layer, not in application code:
// one row per (user_id, content_id, payment_type), and transaction ids are
// globally unique. Concurrent duplicate creates fail with a constraint
// violation which the service maps to the already-exists outcome.
type Payment struct {
	ID     string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	UserID string `gorm:"column:user_id;type:uuid;not null;uniqueIndex:unique_user_content_type,priority:1;index:idx_user_content_status,priority:1" json:"userId"`
	// ContentID is immutable after creation, as is UserID.
	ContentID string `gorm:"column:content_id;type:uuid;not null;uniqueIndex:unique_user_content_type,priority:2;index:idx_user_content_status,priority:2" json:"contentId"`
	// Amount is in the smallest currency unit (paise).
	Amount        int64                `gorm:"column:amount;type:bigint;not null" json:"amount"`
	TransactionID string               `gorm:"column:transaction_id;type:varchar(128);not null;uniqueIndex:unique_transaction_id" json:"transactionId"`
	PaymentType   types.PaymentType    `gorm:"column:payment_type;type:varchar(32);not null;uniqueIndex:unique_user_content_type,priority:3" json:"paymentType"`
	Gateway       types.PaymentGateway `gorm:"column:gateway;type:varchar(32);not null" json:"gateway"`
	Status        types.PaymentStatus  `gorm:"column:status;type:varchar(16);not null;index:idx_user_content_status,priority:3" json:"status"`
	// PaymentURL is the gateway checkout URL for records created through a
	// hosted flow (Instamojo/PhonePe); empty for manual UPI submissions.
	PaymentURL string    `gorm:"column:payment_url;type:varchar(512)" json:"paymentUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Payment) TableName() string { return "payment" }

// Approved reports whether this row grants the entitlement.
func (p *Payment) Approved() bool {
	return p != nil && p.Status == types.PaymentStatusApproved
}
