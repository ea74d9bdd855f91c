package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/climaxott/ledger/pkg/types"
)

type GatewayNotificationLogStatus string

const (
	GatewayNotificationLogStatusReceived     GatewayNotificationLogStatus = "received"
	GatewayNotificationLogStatusHandled      GatewayNotificationLogStatus = "handled"
	GatewayNotificationLogStatusHandleFailed GatewayNotificationLogStatus = "handle_failed"
)

// GatewayNotificationLog records every webhook delivery and its outcome.
// Gateways deliver at-least-once; the log supports manual reconciliation
// when a delivery could not be applied to the ledger.
type GatewayNotificationLog struct {
	ID               string                       `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Gateway          types.PaymentGateway         `gorm:"column:gateway;type:varchar(32);not null" json:"gateway"`
	TransactionID    string                       `gorm:"column:transaction_id;type:varchar(128);index" json:"transactionId"`
	TraceID          string                       `gorm:"column:trace_id;type:varchar(128)" json:"traceId"`
	NotificationTime time.Time                    `gorm:"column:notification_time" json:"notificationTime"`
	Data             datatypes.JSON               `gorm:"column:data;type:jsonb" json:"data"`
	Result           *datatypes.JSON              `gorm:"column:result;type:jsonb" json:"result"`
	Status           GatewayNotificationLogStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	CreatedAt        time.Time                    `json:"createdAt"`
	UpdatedAt        time.Time                    `json:"updatedAt"`
}

func (GatewayNotificationLog) TableName() string { return "gateway_notification_log" }
