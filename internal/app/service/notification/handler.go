package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/climaxott/ledger/internal/app/service/ledger"
	"github.com/climaxott/ledger/internal/app/service/notificationlog"
	"github.com/climaxott/ledger/internal/models"
	"github.com/climaxott/ledger/pkg/config"
	"github.com/climaxott/ledger/pkg/types"
)

type NotificationHandler struct {
	cfg      *config.Config
	notifSvc *notificationlog.Service
	ledger   ledger.Manager
	Logger   *zap.SugaredLogger
}

func NewNotificationHandler(cfg *config.Config, notif *notificationlog.Service, mgr ledger.Manager, log *zap.SugaredLogger) *NotificationHandler {
	return &NotificationHandler{cfg: cfg, notifSvc: notif, ledger: mgr, Logger: log}
}

// HandleNotification parses one webhook delivery, records it, and applies
// the reported status to the matching payment. Deliveries that carry a
// non-terminal state are acknowledged without touching the ledger.
func (h *NotificationHandler) HandleNotification(c *gin.Context, gateway types.PaymentGateway) (payment *models.Payment, resErr error) {
	var parser NotificationParser
	var err error
	switch gateway {
	case types.PaymentGatewayInstamojo:
		parser, err = GetInstamojoNotificationParser(h.cfg, c, time.Now())
	case types.PaymentGatewayPhonePe:
		parser, err = GetPhonePeNotificationParser(h.cfg, c, time.Now())
	case types.PaymentGatewayPayU:
		parser, err = GetPayUNotificationParser(h.cfg, c, time.Now())
	default:
		return nil, fmt.Errorf("unsupported gateway: %s", gateway)
	}
	if err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	var traceID string
	if v, ok := c.Get("traceID"); ok {
		if s, ok2 := v.(string); ok2 {
			traceID = s
		}
	}
	dataBytes, _ := json.Marshal(parser.GetData(ctx))

	h.notifSvc.Save(ctx, &models.GatewayNotificationLog{
		Gateway:          gateway,
		TransactionID:    parser.GetTransactionID(ctx),
		TraceID:          traceID,
		NotificationTime: parser.GetNotificationTime(ctx),
		Data:             datatypes.JSON(dataBytes),
		Status:           models.GatewayNotificationLogStatusReceived,
	})

	defer func() {
		resMap := map[string]any{
			"payment": payment,
		}
		if resErr != nil {
			resMap["error"] = resErr.Error()
		}
		resBytes, _ := json.Marshal(resMap)
		status := models.GatewayNotificationLogStatusHandled
		if resErr != nil {
			status = models.GatewayNotificationLogStatusHandleFailed
		}
		h.notifSvc.Save(ctx, &models.GatewayNotificationLog{
			Gateway:          gateway,
			TransactionID:    parser.GetTransactionID(ctx),
			TraceID:          traceID,
			NotificationTime: time.Now(),
			Data:             datatypes.JSON(dataBytes),
			Result:           func() *datatypes.JSON { j := datatypes.JSON(resBytes); return &j }(),
			Status:           status,
		})
	}()

	event := parser.GetEvent(ctx)
	if event == "" {
		h.Logger.Infow("ignoring non-terminal notification",
			"gateway", gateway, "transactionID", parser.GetTransactionID(ctx))
		return nil, nil
	}

	payment, resErr = h.ledger.ApplyGatewayStatus(ctx, parser.GetTransactionID(ctx), event)
	if resErr != nil {
		h.Logger.Errorw("failed to apply gateway status",
			"gateway", gateway, "transactionID", parser.GetTransactionID(ctx), "error", resErr.Error())
		return nil, resErr
	}
	return payment, nil
}

var Module = fx.Options(
	fx.Provide(NewNotificationHandler),
)
