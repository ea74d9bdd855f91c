package notification

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/climaxott/ledger/internal/app/service/ledger"
	"github.com/climaxott/ledger/internal/app/service/notificationlog"
	"github.com/climaxott/ledger/internal/models"
	"github.com/climaxott/ledger/pkg/config"
	"github.com/climaxott/ledger/pkg/types"
)

type applyCall struct {
	transactionID string
	event         types.GatewayEventStatus
}

// stubLedger records ApplyGatewayStatus calls.
type stubLedger struct {
	ledger.Manager
	calls []applyCall
	err   error
}

func (s *stubLedger) ApplyGatewayStatus(_ context.Context, transactionID string, event types.GatewayEventStatus) (*models.Payment, error) {
	s.calls = append(s.calls, applyCall{transactionID: transactionID, event: event})
	if s.err != nil {
		return nil, s.err
	}
	return &models.Payment{TransactionID: transactionID, Status: types.PaymentStatusApproved}, nil
}

func newTestHandler(t *testing.T, stub *stubLedger) *NotificationHandler {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.GatewayNotificationLog{}))

	cfg := &config.Config{}
	cfg.Instamojo.Salt = "salt"
	cfg.PhonePe.SaltKey = "salt-key"
	cfg.PhonePe.SaltIndex = "1"
	cfg.PayU.MerchantKey = "merchant-key"
	cfg.PayU.Salt = "payu-salt"
	log := zap.NewNop().Sugar()
	return NewNotificationHandler(cfg, notificationlog.New(db, log), stub, log)
}

func ginContext(t *testing.T, req *http.Request) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}

func instamojoForm(salt string, fields map[string]string) *http.Request {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	// order must match VerifyWebhookMAC's sorted joining
	values := make([]string, 0, len(keys))
	for _, k := range []string{"amount", "payment_id", "payment_request_id", "status"} {
		if v, ok := fields[k]; ok {
			values = append(values, v)
		}
	}
	h := hmac.New(sha1.New, []byte(salt))
	h.Write([]byte(strings.Join(values, "|")))

	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}
	form.Set("mac", hex.EncodeToString(h.Sum(nil)))

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHandleNotification_InstamojoCompleted(t *testing.T) {
	stub := &stubLedger{}
	h := newTestHandler(t, stub)

	req := instamojoForm("salt", map[string]string{
		"payment_request_id": "PR1",
		"payment_id":         "MOJO1",
		"status":             "Completed",
		"amount":             "99.00",
	})
	payment, err := h.HandleNotification(ginContext(t, req), types.PaymentGatewayInstamojo)
	require.NoError(t, err)
	require.NotNil(t, payment)
	require.Equal(t, []applyCall{{transactionID: "PR1", event: types.GatewayEventCompleted}}, stub.calls)
}

func TestHandleNotification_InstamojoBadMAC(t *testing.T) {
	stub := &stubLedger{}
	h := newTestHandler(t, stub)

	req := instamojoForm("wrong-salt", map[string]string{
		"payment_request_id": "PR1",
		"status":             "Completed",
	})
	_, err := h.HandleNotification(ginContext(t, req), types.PaymentGatewayInstamojo)
	require.ErrorIs(t, err, ErrMalformed)
	require.Empty(t, stub.calls)
}

func TestHandleNotification_InstamojoNonTerminalIgnored(t *testing.T) {
	stub := &stubLedger{}
	h := newTestHandler(t, stub)

	req := instamojoForm("salt", map[string]string{
		"payment_request_id": "PR1",
		"status":             "Pending",
	})
	payment, err := h.HandleNotification(ginContext(t, req), types.PaymentGatewayInstamojo)
	require.NoError(t, err)
	require.Nil(t, payment)
	require.Empty(t, stub.calls)
}

func TestHandleNotification_InstamojoUnknownTransaction(t *testing.T) {
	stub := &stubLedger{err: ledger.ErrPaymentNotFound}
	h := newTestHandler(t, stub)

	req := instamojoForm("salt", map[string]string{
		"payment_request_id": "PR1",
		"status":             "failed",
	})
	_, err := h.HandleNotification(ginContext(t, req), types.PaymentGatewayInstamojo)
	require.ErrorIs(t, err, ledger.ErrPaymentNotFound)
	require.Equal(t, types.GatewayEventFailed, stub.calls[0].event)
}

func phonePeRequest(saltKey string, cb phonePeCallback) *http.Request {
	raw, _ := json.Marshal(cb)
	encoded := base64.StdEncoding.EncodeToString(raw)
	body, _ := json.Marshal(map[string]string{"response": encoded})

	sum := sha256.Sum256([]byte(encoded + saltKey))
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-VERIFY", hex.EncodeToString(sum[:])+"###1")
	return req
}

func TestHandleNotification_PhonePeCompleted(t *testing.T) {
	stub := &stubLedger{}
	h := newTestHandler(t, stub)

	var cb phonePeCallback
	cb.Code = "PAYMENT_SUCCESS"
	cb.Data.MerchantTransactionID = "TXN1"
	cb.Data.State = "COMPLETED"

	payment, err := h.HandleNotification(ginContext(t, phonePeRequest("salt-key", cb)), types.PaymentGatewayPhonePe)
	require.NoError(t, err)
	require.NotNil(t, payment)
	require.Equal(t, []applyCall{{transactionID: "TXN1", event: types.GatewayEventCompleted}}, stub.calls)
}

func TestHandleNotification_PhonePeBadSignature(t *testing.T) {
	stub := &stubLedger{}
	h := newTestHandler(t, stub)

	var cb phonePeCallback
	cb.Data.MerchantTransactionID = "TXN1"
	cb.Data.State = "COMPLETED"

	_, err := h.HandleNotification(ginContext(t, phonePeRequest("wrong-key", cb)), types.PaymentGatewayPhonePe)
	require.ErrorIs(t, err, ErrMalformed)
	require.Empty(t, stub.calls)
}

func payuForm(key, salt string, fields map[string]string) *http.Request {
	rev := []string{
		salt, fields["status"],
		"", "", "", "", "",
		"", "", "", "", "",
		fields["email"], fields["firstname"], fields["productinfo"], fields["amount"], fields["txnid"],
		key,
	}
	sum := sha512.Sum512([]byte(strings.Join(rev, "|")))

	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}
	form.Set("hash", hex.EncodeToString(sum[:]))

	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHandleNotification_PayUSuccess(t *testing.T) {
	stub := &stubLedger{}
	h := newTestHandler(t, stub)

	req := payuForm("merchant-key", "payu-salt", map[string]string{
		"txnid":       "TXN2",
		"amount":      "499.00",
		"productinfo": "content-1",
		"firstname":   "Asha",
		"email":       "asha@example.com",
		"status":      "success",
	})
	payment, err := h.HandleNotification(ginContext(t, req), types.PaymentGatewayPayU)
	require.NoError(t, err)
	require.NotNil(t, payment)
	require.Equal(t, []applyCall{{transactionID: "TXN2", event: types.GatewayEventCompleted}}, stub.calls)
}

func TestHandleNotification_PayUBadHash(t *testing.T) {
	stub := &stubLedger{}
	h := newTestHandler(t, stub)

	req := payuForm("merchant-key", "wrong-salt", map[string]string{
		"txnid":  "TXN2",
		"status": "success",
	})
	_, err := h.HandleNotification(ginContext(t, req), types.PaymentGatewayPayU)
	require.ErrorIs(t, err, ErrMalformed)
	require.Empty(t, stub.calls)
}

func TestHandleNotification_PayUFailureDeclined(t *testing.T) {
	stub := &stubLedger{}
	h := newTestHandler(t, stub)

	req := payuForm("merchant-key", "payu-salt", map[string]string{
		"txnid":  "TXN3",
		"status": "failure",
	})
	payment, err := h.HandleNotification(ginContext(t, req), types.PaymentGatewayPayU)
	require.NoError(t, err)
	require.NotNil(t, payment)
	require.Equal(t, types.GatewayEventFailed, stub.calls[0].event)
}

func TestGetPhonePeNotificationParser_EventMapping(t *testing.T) {
	cfg := &config.Config{}
	cfg.PhonePe.SaltKey = "salt-key"
	cfg.PhonePe.SaltIndex = "1"

	for state, want := range map[string]types.GatewayEventStatus{
		"COMPLETED": types.GatewayEventCompleted,
		"FAILED":    types.GatewayEventFailed,
		"EXPIRED":   types.GatewayEventExpired,
		"PENDING":   "",
	} {
		var cb phonePeCallback
		cb.Data.MerchantTransactionID = "TXN1"
		cb.Data.State = state

		parser, err := GetPhonePeNotificationParser(cfg, ginContext(t, phonePeRequest("salt-key", cb)), time.Now())
		require.NoError(t, err, state)
		require.Equal(t, want, parser.GetEvent(context.Background()), state)
	}
}
