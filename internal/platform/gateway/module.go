package gateway

import (
	"go.uber.org/fx"

	"github.com/climaxott/ledger/internal/platform/gateway/instamojo"
	"github.com/climaxott/ledger/internal/platform/gateway/phonepe"
	"github.com/climaxott/ledger/pkg/config"
)

var Module = fx.Options(
	fx.Provide(func(cfg *config.Config) *instamojo.Client { return instamojo.NewClient(cfg.Instamojo) }),
	fx.Provide(func(cfg *config.Config) *phonepe.Client { return phonepe.NewClient(cfg.PhonePe) }),
)
