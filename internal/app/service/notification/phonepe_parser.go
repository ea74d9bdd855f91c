package notification

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/climaxott/ledger/internal/platform/gateway/phonepe"
	"github.com/climaxott/ledger/pkg/config"
	"github.com/climaxott/ledger/pkg/types"
)

type phonePeCallback struct {
	Code string `json:"code"`
	Data struct {
		MerchantTransactionID string `json:"merchantTransactionId"`
		State                 string `json:"state"`
	} `json:"data"`
}

// phonePeParser reads the S2S callback PhonePe posts: a JSON envelope with
// a base64 response body, authenticated by the X-VERIFY header.
type phonePeParser struct {
	callback   phonePeCallback
	raw        json.RawMessage
	event      types.GatewayEventStatus
	receivedAt time.Time
}

func GetPhonePeNotificationParser(cfg *config.Config, c *gin.Context, now time.Time) (NotificationParser, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var envelope struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Response == "" {
		return nil, fmt.Errorf("%w: bad envelope", ErrMalformed)
	}
	if !phonepe.VerifyCallback(cfg.PhonePe, envelope.Response, c.GetHeader("X-VERIFY")) {
		return nil, fmt.Errorf("%w: bad X-VERIFY", ErrMalformed)
	}
	decoded, err := base64.StdEncoding.DecodeString(envelope.Response)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var cb phonePeCallback
	if err := json.Unmarshal(decoded, &cb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if cb.Data.MerchantTransactionID == "" {
		return nil, fmt.Errorf("%w: missing merchantTransactionId", ErrMalformed)
	}

	var event types.GatewayEventStatus
	switch cb.Data.State {
	case "COMPLETED":
		event = types.GatewayEventCompleted
	case "FAILED":
		event = types.GatewayEventFailed
	case "EXPIRED":
		event = types.GatewayEventExpired
	}
	return &phonePeParser{callback: cb, raw: decoded, event: event, receivedAt: now}, nil
}

func (p *phonePeParser) GetTransactionID(context.Context) string {
	return p.callback.Data.MerchantTransactionID
}

func (p *phonePeParser) GetEvent(context.Context) types.GatewayEventStatus { return p.event }

func (p *phonePeParser) GetData(context.Context) any { return p.raw }

func (p *phonePeParser) GetNotificationTime(context.Context) time.Time { return p.receivedAt }
