package instamojo

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func signFields(salt string, values string) string {
	h := hmac.New(sha1.New, []byte(salt))
	h.Write([]byte(values))
	return hex.EncodeToString(h.Sum(nil))
}

func TestVerifyWebhookMAC(t *testing.T) {
	fields := map[string]string{
		"payment_request_id": "PR1",
		"payment_id":         "MOJO1",
		"status":             "Completed",
		"amount":             "99.00",
	}
	// Values joined by key order: amount, payment_id, payment_request_id, status.
	mac := signFields("salt", "99.00|MOJO1|PR1|Completed")

	require.True(t, VerifyWebhookMAC("salt", fields, mac))

	t.Run("case-insensitive mac", func(t *testing.T) {
		upper := ""
		for _, r := range mac {
			if r >= 'a' && r <= 'f' {
				upper += string(r - 32)
			} else {
				upper += string(r)
			}
		}
		require.True(t, VerifyWebhookMAC("salt", fields, upper))
	})

	t.Run("tampered field rejected", func(t *testing.T) {
		tampered := map[string]string{}
		for k, v := range fields {
			tampered[k] = v
		}
		tampered["amount"] = "1.00"
		require.False(t, VerifyWebhookMAC("salt", tampered, mac))
	})

	t.Run("wrong salt rejected", func(t *testing.T) {
		require.False(t, VerifyWebhookMAC("other", fields, mac))
	})

	t.Run("empty salt disables verification", func(t *testing.T) {
		require.True(t, VerifyWebhookMAC("", fields, "garbage"))
	})

	t.Run("mac field itself is excluded from signing", func(t *testing.T) {
		withMac := map[string]string{}
		for k, v := range fields {
			withMac[k] = v
		}
		withMac["mac"] = mac
		require.True(t, VerifyWebhookMAC("salt", withMac, mac))
	})
}
