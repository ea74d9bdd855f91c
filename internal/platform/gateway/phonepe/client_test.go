package phonepe

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	cfgpkg "github.com/climaxott/ledger/pkg/config"
)

func TestVerifyCallback(t *testing.T) {
	cfg := cfgpkg.PhonePeConfig{SaltKey: "salt-key", SaltIndex: "1"}
	body := "eyJjb2RlIjoiUEFZTUVOVF9TVUNDRVNTIn0="

	sum := sha256.Sum256([]byte(body + cfg.SaltKey))
	xVerify := hex.EncodeToString(sum[:]) + "###1"

	require.True(t, VerifyCallback(cfg, body, xVerify))
	require.False(t, VerifyCallback(cfg, body+"x", xVerify))
	require.False(t, VerifyCallback(cfg, body, xVerify+"x"))

	t.Run("salt index is part of the header", func(t *testing.T) {
		cfg2 := cfg
		cfg2.SaltIndex = "2"
		require.False(t, VerifyCallback(cfg2, body, xVerify))
	})

	t.Run("empty salt disables verification", func(t *testing.T) {
		require.True(t, VerifyCallback(cfgpkg.PhonePeConfig{}, body, "anything"))
	})
}

func TestXVerify(t *testing.T) {
	c := NewClient(cfgpkg.PhonePeConfig{SaltKey: "s", SaltIndex: "3"})
	payload := "cGF5bG9hZA=="

	sum := sha256.Sum256([]byte(payload + payPath + "s"))
	require.Equal(t, hex.EncodeToString(sum[:])+"###3", c.xVerify(payload, payPath))
}
