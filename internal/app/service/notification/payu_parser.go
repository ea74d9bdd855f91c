package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/climaxott/ledger/internal/platform/gateway/payu"
	"github.com/climaxott/ledger/pkg/config"
	"github.com/climaxott/ledger/pkg/types"
)

// payuParser reads the form-encoded return callback PayU posts after a
// hosted checkout finishes. The hash field signs the reversed request
// fields plus the transaction status.
type payuParser struct {
	fields     map[string]string
	event      types.GatewayEventStatus
	receivedAt time.Time
}

func GetPayUNotificationParser(cfg *config.Config, c *gin.Context, now time.Time) (NotificationParser, error) {
	if err := c.Request.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	fields := map[string]string{}
	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	if fields["txnid"] == "" {
		return nil, fmt.Errorf("%w: missing txnid", ErrMalformed)
	}
	status := strings.ToLower(fields["status"])
	ok := payu.VerifyResponseHash(cfg.PayU, &payu.RequestParams{
		TxnID:       fields["txnid"],
		Amount:      fields["amount"],
		ProductInfo: fields["productinfo"],
		FirstName:   fields["firstname"],
		Email:       fields["email"],
	}, fields["status"], fields["hash"])
	if !ok {
		return nil, fmt.Errorf("%w: bad hash", ErrMalformed)
	}

	var event types.GatewayEventStatus
	switch status {
	case "success":
		event = types.GatewayEventCompleted
	case "failure", "failed":
		event = types.GatewayEventFailed
	case "dropped", "expired":
		event = types.GatewayEventExpired
	}
	return &payuParser{fields: fields, event: event, receivedAt: now}, nil
}

func (p *payuParser) GetTransactionID(context.Context) string {
	return p.fields["txnid"]
}

func (p *payuParser) GetEvent(context.Context) types.GatewayEventStatus { return p.event }

func (p *payuParser) GetData(context.Context) any { return p.fields }

func (p *payuParser) GetNotificationTime(context.Context) time.Time { return p.receivedAt }
