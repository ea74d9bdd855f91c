package payu

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"

	cfgpkg "github.com/climaxott/ledger/pkg/config"
)

// PayU hosted checkout exchanges sha512 checksums instead of API calls:
// the merchant signs the outgoing request and verifies the reversed-field
// hash on the return callback.

type RequestParams struct {
	TxnID       string
	Amount      string
	ProductInfo string
	FirstName   string
	Email       string
}

// RequestHash computes the checkout request checksum:
// sha512(key|txnid|amount|productinfo|firstname|email|udf1..udf5||||||salt).
func RequestHash(cfg cfgpkg.PayUConfig, p *RequestParams) string {
	fields := []string{
		cfg.MerchantKey, p.TxnID, p.Amount, p.ProductInfo, p.FirstName, p.Email,
		"", "", "", "", "", // udf1..udf5
		"", "", "", "", "",
		cfg.Salt,
	}
	sum := sha512.Sum512([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(sum[:])
}

// VerifyResponseHash checks the return-callback checksum, which reverses
// the field order and prepends the transaction status:
// sha512(salt|status||||||||||email|firstname|productinfo|amount|txnid|key).
func VerifyResponseHash(cfg cfgpkg.PayUConfig, p *RequestParams, status, got string) bool {
	fields := []string{
		cfg.Salt, status,
		"", "", "", "", "",
		"", "", "", "", "",
		p.Email, p.FirstName, p.ProductInfo, p.Amount, p.TxnID,
		cfg.MerchantKey,
	}
	sum := sha512.Sum512([]byte(strings.Join(fields, "|")))
	return hex.EncodeToString(sum[:]) == strings.ToLower(got)
}
