package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/climaxott/ledger/internal/app/service/ledger"
	"github.com/climaxott/ledger/pkg/logctx"
	"github.com/climaxott/ledger/pkg/response"
	"github.com/climaxott/ledger/pkg/types"

	"go.uber.org/zap"
)

type submitPaymentResp struct {
	Paid        bool `json:"paid"`
	AlreadyPaid bool `json:"alreadyPaid"`
	Payment     any  `json:"payment"`
}

// @Summary      Submit Payment
// @Description  Records a client-initiated payment. Resubmitting an existing (user, content, type) tuple returns the existing record instead of creating a second one.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body ledger.SubmitRequest true "Payment submission"
// @Success      201  {object}  handlers.submitPaymentResp
// @Success      200  {object}  handlers.submitPaymentResp
// @Failure      400  {object}  response.Msg
// @Failure      404  {object}  response.Msg
// @Failure      409  {object}  response.Msg
// @Router       /api/payments [post]
func ApiSubmitPayment(mgr ledger.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ledger.SubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}

		res, err := mgr.Submit(c.Request.Context(), &req)
		if err != nil {
			switch {
			case errors.Is(err, ledger.ErrValidation):
				response.Error(c, http.StatusBadRequest, err.Error())
			case errors.Is(err, ledger.ErrUserNotFound), errors.Is(err, ledger.ErrContentNotFound):
				response.Error(c, http.StatusNotFound, err.Error())
			case errors.Is(err, ledger.ErrTransactionIDReused):
				response.Error(c, http.StatusConflict, err.Error())
			default:
				logctx.FromGin(c, log).Errorw("payment_submit_error", "error", err.Error())
				response.InternalError(c)
			}
			return
		}

		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		c.JSON(status, submitPaymentResp{
			Paid:        res.Paid(),
			AlreadyPaid: res.AlreadyPaid,
			Payment:     res.Payment,
		})
	}
}

// @Summary      Access Check
// @Description  Answers whether the user holds unlock rights to the content.
// @Tags         Payment
// @Produce      json
// @Param        userId      query  string  true   "User id"
// @Param        contentId   query  string  true   "Content id"
// @Param        paymentType query  string  false  "Payment type (default premium-content)"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  response.Msg
// @Router       /api/payments/check [get]
func ApiCheckPayment(mgr ledger.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("userId")
		contentID := c.Query("contentId")
		if userID == "" || contentID == "" {
			response.Error(c, http.StatusBadRequest, "userId and contentId are required")
			return
		}
		paymentType := types.PaymentType(c.Query("paymentType"))
		if paymentType == "" {
			paymentType = types.PaymentTypePremiumContent
		}

		paid, payment, err := mgr.Check(c.Request.Context(), userID, contentID, paymentType)
		if err != nil {
			logctx.FromGin(c, log).Errorw("payment_check_error", "error", err.Error())
			response.Error(c, http.StatusServiceUnavailable, "could not determine entitlement")
			return
		}
		out := gin.H{"paid": paid}
		if payment != nil {
			out["payment"] = payment
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary      Any-status Check
// @Description  Reports any ledger entry for the tuple regardless of status.
// @Tags         Payment
// @Produce      json
// @Param        userId      query  string  true   "User id"
// @Param        contentId   query  string  true   "Content id"
// @Param        paymentType query  string  false  "Payment type (default premium-content)"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  response.Msg
// @Router       /api/payments/check-any [get]
func ApiCheckAnyPayment(mgr ledger.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("userId")
		contentID := c.Query("contentId")
		if userID == "" || contentID == "" {
			response.Error(c, http.StatusBadRequest, "userId and contentId are required")
			return
		}
		paymentType := types.PaymentType(c.Query("paymentType"))
		if paymentType == "" {
			paymentType = types.PaymentTypePremiumContent
		}

		payment, err := mgr.CheckAny(c.Request.Context(), userID, contentID, paymentType)
		if err != nil {
			logctx.FromGin(c, log).Errorw("payment_check_any_error", "error", err.Error())
			response.Error(c, http.StatusServiceUnavailable, "could not determine entitlement")
			return
		}
		c.JSON(http.StatusOK, gin.H{"exists": payment != nil, "payment": payment})
	}
}

// @Summary      List Payments (Admin)
// @Description  Returns all payments newest-first, enriched with user and content names.
// @Tags         Payment
// @Produce      json
// @Success      200  {array}  ledger.EnrichedPayment
// @Router       /api/payments/all [get]
func ApiListAllPayments(mgr ledger.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := mgr.ListEnriched(c.Request.Context())
		if err != nil {
			logctx.FromGin(c, log).Errorw("payment_list_error", "error", err.Error())
			response.InternalError(c)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func transitionHandler(log *zap.SugaredLogger, message string,
	fn func(c *gin.Context, id string) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		payment, err := fn(c, c.Param("id"))
		if err != nil {
			if errors.Is(err, ledger.ErrPaymentNotFound) {
				response.Error(c, http.StatusNotFound, err.Error())
				return
			}
			logctx.FromGin(c, log).Errorw("payment_transition_error", "error", err.Error())
			response.InternalError(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": message, "payment": payment})
	}
}

// @Summary      Approve Payment (Admin)
// @Tags         Payment
// @Produce      json
// @Param        id  path  string  true  "Payment id"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  response.Msg
// @Router       /api/payments/{id}/approve [post]
func ApiApprovePayment(mgr ledger.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return transitionHandler(log, "Payment approved", func(c *gin.Context, id string) (any, error) {
		return mgr.Approve(c.Request.Context(), id)
	})
}

// @Summary      Decline Payment (Admin)
// @Tags         Payment
// @Produce      json
// @Param        id  path  string  true  "Payment id"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  response.Msg
// @Router       /api/payments/{id}/decline [post]
func ApiDeclinePayment(mgr ledger.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return transitionHandler(log, "Payment declined", func(c *gin.Context, id string) (any, error) {
		return mgr.Decline(c.Request.Context(), id)
	})
}

// @Summary      Delete Payment (Admin)
// @Description  Hard-deletes a payment record (admin rejection).
// @Tags         Payment
// @Produce      json
// @Param        id  path  string  true  "Payment id"
// @Success      200  {object}  response.Msg
// @Failure      404  {object}  response.Msg
// @Router       /api/payments/{id} [delete]
func ApiDeletePayment(mgr ledger.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := mgr.Delete(c.Request.Context(), c.Param("id")); err != nil {
			if errors.Is(err, ledger.ErrPaymentNotFound) {
				response.Error(c, http.StatusNotFound, err.Error())
				return
			}
			logctx.FromGin(c, log).Errorw("payment_delete_error", "error", err.Error())
			response.InternalError(c)
			return
		}
		c.JSON(http.StatusOK, response.Msg{Message: "Payment deleted"})
	}
}

// RegisterPaymentRoutes mounts the payment ledger routes. The admin group
// is expected to carry the admin-role middleware.
func RegisterPaymentRoutes(r gin.IRouter, admin gin.IRouter, mgr ledger.Manager, log *zap.SugaredLogger) {
	r.POST("", ApiSubmitPayment(mgr, log))
	r.GET("/check", ApiCheckPayment(mgr, log))
	r.GET("/check-any", ApiCheckAnyPayment(mgr, log))

	admin.GET("/all", ApiListAllPayments(mgr, log))
	admin.POST("/:id/approve", ApiApprovePayment(mgr, log))
	admin.PATCH("/:id/approve", ApiApprovePayment(mgr, log))
	admin.POST("/:id/decline", ApiDeclinePayment(mgr, log))
	admin.PATCH("/:id/decline", ApiDeclinePayment(mgr, log))
	admin.DELETE("/:id", ApiDeletePayment(mgr, log))
}
