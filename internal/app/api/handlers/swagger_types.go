package handlers

import (
	"time"

	"github.com/climaxott/ledger/pkg/types"
)

// SwaggerPayment is a simplified view of models.Payment for documentation purposes.
type SwaggerPayment struct {
	ID            string               `json:"id"`
	UserID        string               `json:"userId"`
	ContentID     string               `json:"contentId"`
	Amount        int64                `json:"amount"`
	TransactionID string               `json:"transactionId"`
	Gateway       types.PaymentGateway `json:"gateway"`
	PaymentType   types.PaymentType    `json:"paymentType"`
	Status        types.PaymentStatus  `json:"status"`
	PaymentURL    string               `json:"paymentUrl,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}
