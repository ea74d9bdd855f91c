package phonepe

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	cfgpkg "github.com/climaxott/ledger/pkg/config"
)

const (
	payPath    = "/pg/v1/pay"
	statusPath = "/pg/v1/status"
)

// Client talks to the PhonePe PG v1 API. Every request carries an X-VERIFY
// checksum: sha256(payload + path + saltKey) + "###" + saltIndex.
type Client struct {
	cfg  cfgpkg.PhonePeConfig
	http *http.Client
}

func NewClient(cfg cfgpkg.PhonePeConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type CreateParams struct {
	// MerchantTransactionID is our ledger transaction id.
	MerchantTransactionID string
	// AmountPaise is in the smallest currency unit.
	AmountPaise int64
	UserID      string
	RedirectURL string
	CallbackURL string
}

// PayPage is the hosted checkout handle returned by the pay API.
type PayPage struct {
	URL string
}

type payRequest struct {
	MerchantID            string `json:"merchantId"`
	MerchantTransactionID string `json:"merchantTransactionId"`
	MerchantUserID        string `json:"merchantUserId"`
	Amount                int64  `json:"amount"`
	RedirectURL           string `json:"redirectUrl"`
	RedirectMode          string `json:"redirectMode"`
	CallbackURL           string `json:"callbackUrl"`
	PaymentInstrument     struct {
		Type string `json:"type"`
	} `json:"paymentInstrument"`
}

type payResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		InstrumentResponse struct {
			RedirectInfo struct {
				URL string `json:"url"`
			} `json:"redirectInfo"`
		} `json:"instrumentResponse"`
	} `json:"data"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Data    struct {
		State         string `json:"state"`
		TransactionID string `json:"transactionId"`
		Amount        int64  `json:"amount"`
	} `json:"data"`
}

func (c *Client) xVerify(payload, path string) string {
	sum := sha256.Sum256([]byte(payload + path + c.cfg.SaltKey))
	return hex.EncodeToString(sum[:]) + "###" + c.cfg.SaltIndex
}

// CreatePayment starts a hosted pay-page transaction.
func (c *Client) CreatePayment(ctx context.Context, params *CreateParams) (*PayPage, error) {
	reqBody := payRequest{
		MerchantID:            c.cfg.MerchantID,
		MerchantTransactionID: params.MerchantTransactionID,
		MerchantUserID:        params.UserID,
		Amount:                params.AmountPaise,
		RedirectURL:           params.RedirectURL,
		RedirectMode:          "REDIRECT",
		CallbackURL:           params.CallbackURL,
	}
	reqBody.PaymentInstrument.Type = "PAY_PAGE"

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pay request: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	bodyJSON, _ := json.Marshal(map[string]string{"request": encoded})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimSuffix(c.cfg.BaseURL, "/")+payPath, bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-VERIFY", c.xVerify(encoded, payPath))

	var out payResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("phonepe pay rejected: %s %s", out.Code, out.Message)
	}
	return &PayPage{URL: out.Data.InstrumentResponse.RedirectInfo.URL}, nil
}

// CheckStatus fetches the transaction state (COMPLETED, FAILED, PENDING...).
func (c *Client) CheckStatus(ctx context.Context, merchantTransactionID string) (string, error) {
	path := fmt.Sprintf("%s/%s/%s", statusPath, c.cfg.MerchantID, merchantTransactionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimSuffix(c.cfg.BaseURL, "/")+path, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-MERCHANT-ID", c.cfg.MerchantID)
	req.Header.Set("X-VERIFY", c.xVerify("", path))

	var out statusResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.Data.State, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("phonepe request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read phonepe response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("phonepe returned %d: %s", resp.StatusCode, string(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode phonepe response: %w", err)
	}
	return nil
}

// VerifyCallback checks the X-VERIFY header PhonePe sends with server
// callbacks, computed over the base64 response body.
func VerifyCallback(cfg cfgpkg.PhonePeConfig, encodedBody, xVerify string) bool {
	if cfg.SaltKey == "" {
		return true
	}
	sum := sha256.Sum256([]byte(encodedBody + cfg.SaltKey))
	expected := hex.EncodeToString(sum[:]) + "###" + cfg.SaltIndex
	return expected == xVerify
}
