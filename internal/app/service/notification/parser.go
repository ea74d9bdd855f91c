package notification

import (
	"context"
	"errors"
	"time"

	"github.com/climaxott/ledger/pkg/types"
)

// ErrMalformed marks a webhook body that could not be parsed or failed
// signature verification. Surfaced to the gateway as a 400 so it stops
// redelivering garbage.
var ErrMalformed = errors.New("malformed webhook payload")

// NotificationParser extracts ledger-relevant facts from one gateway
// webhook delivery. Implementations are constructed per request.
type NotificationParser interface {
	// GetTransactionID returns the gateway transaction reference.
	GetTransactionID(ctx context.Context) string
	// GetEvent returns the reported terminal status, or "" when the
	// delivery carries a non-terminal state we acknowledge but ignore.
	GetEvent(ctx context.Context) types.GatewayEventStatus
	// GetData returns the raw payload for the notification log.
	GetData(ctx context.Context) any
	GetNotificationTime(ctx context.Context) time.Time
}
