package payu

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	cfgpkg "github.com/climaxott/ledger/pkg/config"
)

var testCfg = cfgpkg.PayUConfig{MerchantKey: "gtKFFx", Salt: "eCwWELxi"}

var testParams = &RequestParams{
	TxnID:       "TXN1",
	Amount:      "99.00",
	ProductInfo: "premium-content",
	FirstName:   "Asha",
	Email:       "asha@example.com",
}

func TestRequestHash(t *testing.T) {
	// key|txnid|amount|productinfo|firstname|email|udf1..udf5||||||salt
	raw := "gtKFFx|TXN1|99.00|premium-content|Asha|asha@example.com|||||||||||eCwWELxi"
	sum := sha512.Sum512([]byte(raw))

	require.Equal(t, hex.EncodeToString(sum[:]), RequestHash(testCfg, testParams))
}

func TestVerifyResponseHash(t *testing.T) {
	// salt|status|||||||||||email|firstname|productinfo|amount|txnid|key
	raw := "eCwWELxi|success|||||||||||asha@example.com|Asha|premium-content|99.00|TXN1|gtKFFx"
	sum := sha512.Sum512([]byte(raw))
	got := hex.EncodeToString(sum[:])

	require.True(t, VerifyResponseHash(testCfg, testParams, "success", got))
	require.True(t, VerifyResponseHash(testCfg, testParams, "success", strings.ToUpper(got)))
	require.False(t, VerifyResponseHash(testCfg, testParams, "failure", got))

	tampered := *testParams
	tampered.Amount = "1.00"
	require.False(t, VerifyResponseHash(testCfg, &tampered, "success", got))
}
