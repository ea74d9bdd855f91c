package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/climaxott/ledger/internal/platform/gateway/instamojo"
	"github.com/climaxott/ledger/pkg/config"
	"github.com/climaxott/ledger/pkg/types"
)

// instamojoParser reads the form-encoded webhook Instamojo posts after a
// payment request settles. The mac field signs every other field with the
// account salt.
type instamojoParser struct {
	fields     map[string]string
	event      types.GatewayEventStatus
	receivedAt time.Time
}

func GetInstamojoNotificationParser(cfg *config.Config, c *gin.Context, now time.Time) (NotificationParser, error) {
	if err := c.Request.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	fields := map[string]string{}
	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	mac := fields["mac"]
	delete(fields, "mac")
	if fields["payment_request_id"] == "" {
		return nil, fmt.Errorf("%w: missing payment_request_id", ErrMalformed)
	}
	if !instamojo.VerifyWebhookMAC(cfg.Instamojo.Salt, fields, mac) {
		return nil, fmt.Errorf("%w: bad mac", ErrMalformed)
	}

	var event types.GatewayEventStatus
	switch strings.ToLower(fields["status"]) {
	case "completed", "credit":
		event = types.GatewayEventCompleted
	case "failed":
		event = types.GatewayEventFailed
	case "expired":
		event = types.GatewayEventExpired
	}
	return &instamojoParser{fields: fields, event: event, receivedAt: now}, nil
}

func (p *instamojoParser) GetTransactionID(context.Context) string {
	return p.fields["payment_request_id"]
}

func (p *instamojoParser) GetEvent(context.Context) types.GatewayEventStatus { return p.event }

func (p *instamojoParser) GetData(context.Context) any { return p.fields }

func (p *instamojoParser) GetNotificationTime(context.Context) time.Time { return p.receivedAt }
