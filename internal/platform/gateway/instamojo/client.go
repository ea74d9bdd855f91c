package instamojo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	cfgpkg "github.com/climaxott/ledger/pkg/config"
)

// Client talks to the Instamojo payment-requests API.
type Client struct {
	cfg  cfgpkg.InstamojoConfig
	http *http.Client
}

func NewClient(cfg cfgpkg.InstamojoConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// PaymentRequest is the gateway-side record of a hosted checkout.
type PaymentRequest struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Amount  string `json:"amount"`
	Purpose string `json:"purpose"`
	Email   string `json:"email"`
	LongURL string `json:"longurl"`
}

type paymentRequestEnvelope struct {
	Success        bool            `json:"success"`
	PaymentRequest *PaymentRequest `json:"payment_request"`
	Message        json.RawMessage `json:"message"`
}

// CreateParams describes a new payment request. Amount is in rupees with
// two decimals, as the API expects.
type CreateParams struct {
	Purpose     string `json:"purpose"`
	Amount      string `json:"amount"`
	BuyerName   string `json:"buyer_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	RedirectURL string `json:"redirect_url"`
	Webhook     string `json:"webhook"`
	SendEmail   bool   `json:"send_email"`
	SendSMS     bool   `json:"send_sms"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return err
	}
	req.Header.Set("X-Api-Key", c.cfg.APIKey)
	req.Header.Set("X-Auth-Token", c.cfg.AuthToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("instamojo request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read instamojo response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("instamojo returned %d: %s", resp.StatusCode, string(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode instamojo response: %w", err)
		}
	}
	return nil
}

// CreatePaymentRequest creates a hosted checkout and returns its id and
// long URL.
func (c *Client) CreatePaymentRequest(ctx context.Context, params *CreateParams) (*PaymentRequest, error) {
	var env paymentRequestEnvelope
	if err := c.do(ctx, http.MethodPost, "payment-requests/", params, &env); err != nil {
		return nil, err
	}
	if env.PaymentRequest == nil {
		return nil, fmt.Errorf("instamojo response missing payment_request")
	}
	return env.PaymentRequest, nil
}

// GetPaymentRequest fetches the current gateway-side status.
func (c *Client) GetPaymentRequest(ctx context.Context, id string) (*PaymentRequest, error) {
	var env paymentRequestEnvelope
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("payment-requests/%s/", id), nil, &env); err != nil {
		return nil, err
	}
	if env.PaymentRequest == nil {
		return nil, fmt.Errorf("instamojo response missing payment_request")
	}
	return env.PaymentRequest, nil
}

// VerifyWebhookMAC checks the HMAC-SHA1 signature Instamojo attaches to
// webhook posts: field values sorted by key, joined with '|', keyed by the
// account salt. An empty configured salt disables verification.
func VerifyWebhookMAC(salt string, fields map[string]string, mac string) bool {
	if salt == "" {
		return true
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "mac" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, 0, len(keys))
	for _, k := range keys {
		values = append(values, fields[k])
	}
	h := hmac.New(sha1.New, []byte(salt))
	h.Write([]byte(strings.Join(values, "|")))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(mac)))
}
