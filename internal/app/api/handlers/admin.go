package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/climaxott/ledger/internal/app/service/ledger"
	"github.com/climaxott/ledger/internal/app/service/statistics"
	"github.com/climaxott/ledger/pkg/logctx"
	"github.com/climaxott/ledger/pkg/response"
)

// @Summary      List Payments (Admin)
// @Description  Retrieves a paginated and filterable list of ledger entries.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ledger.ScanRequest true "List request with filters, pagination, and sorting"
// @Success      200  {object}  ledger.ScanResponse
// @Failure      400  {object}  response.Msg
// @Router       /api/admin/list_payments [post]
func ApiListPayments(mgr ledger.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ledger.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		res, err := mgr.Scan(c.Request.Context(), &req)
		if err != nil {
			logctx.FromGin(c, log).Errorw("admin_list_payments_error", "error", err.Error())
			response.InternalError(c)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary      Get Payment Statistics (Admin)
// @Description  Retrieves daily and per-gateway payment statistics.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.PaymentStatisticRequest true "Statistic request parameters"
// @Success      200  {object}  statistics.PaymentStatisticResponse
// @Failure      400  {object}  response.Msg
// @Router       /api/admin/get_payment_statistic [post]
func ApiGetPaymentStatistic(svc *statistics.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.PaymentStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		res, err := svc.GetPaymentStatistic(c.Request.Context(), &req)
		if err != nil {
			logctx.FromGin(c, log).Errorw("admin_statistic_error", "error", err.Error())
			response.InternalError(c)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func RegisterAdminRoutes(r gin.IRouter, mgr ledger.Manager, stats *statistics.Service, log *zap.SugaredLogger) {
	r.POST("/list_payments", ApiListPayments(mgr, log))
	r.POST("/get_payment_statistic", ApiGetPaymentStatistic(stats, log))
}
