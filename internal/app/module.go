package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/climaxott/ledger/internal/app/api/server"
	"github.com/climaxott/ledger/internal/app/service/catalog"
	"github.com/climaxott/ledger/internal/app/service/ledger"
	"github.com/climaxott/ledger/internal/app/service/notification"
	"github.com/climaxott/ledger/internal/app/service/notificationlog"
	"github.com/climaxott/ledger/internal/app/service/settings"
	"github.com/climaxott/ledger/internal/app/service/statistics"
	"github.com/climaxott/ledger/internal/app/service/user"
	"github.com/climaxott/ledger/internal/platform/db"
	"github.com/climaxott/ledger/internal/platform/gateway"
	"github.com/climaxott/ledger/pkg/config"
	"github.com/climaxott/ledger/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	gateway.Module,
	server.Module,
	ledger.Module,
	catalog.Module,
	user.Module,
	settings.Module,
	statistics.Module,
	notificationlog.Module,
	notification.Module,
)
