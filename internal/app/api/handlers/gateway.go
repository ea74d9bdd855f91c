package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/climaxott/ledger/internal/app/service/ledger"
	"github.com/climaxott/ledger/internal/app/service/notification"
	"github.com/climaxott/ledger/internal/platform/gateway/instamojo"
	"github.com/climaxott/ledger/internal/platform/gateway/payu"
	"github.com/climaxott/ledger/internal/platform/gateway/phonepe"
	"github.com/climaxott/ledger/pkg/config"
	"github.com/climaxott/ledger/pkg/logctx"
	"github.com/climaxott/ledger/pkg/response"
	"github.com/climaxott/ledger/pkg/tool"
	"github.com/climaxott/ledger/pkg/types"
)

type gatewayCreateRequest struct {
	UserID      string            `json:"userId" binding:"required"`
	ContentID   string            `json:"contentId" binding:"required"`
	Amount      int64             `json:"amount" binding:"required"`
	PaymentType types.PaymentType `json:"paymentType"`
	BuyerName   string            `json:"buyerName"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
}

// paiseToRupees renders a paise amount the way hosted checkouts expect.
func paiseToRupees(paise int64) string {
	return fmt.Sprintf("%d.%02d", paise/100, paise%100)
}

func writeSubmitError(c *gin.Context, log *zap.SugaredLogger, err error) {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrUserNotFound), errors.Is(err, ledger.ErrContentNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrTransactionIDReused):
		response.Error(c, http.StatusConflict, err.Error())
	default:
		logctx.FromGin(c, log).Errorw("gateway_create_error", "error", err.Error())
		response.InternalError(c)
	}
}

// @Summary      Create Instamojo Checkout
// @Description  Creates a hosted payment request and a pending ledger entry resolved later by webhook.
// @Tags         Gateway
// @Accept       json
// @Produce      json
// @Param        request body handlers.gatewayCreateRequest true "Checkout request"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  response.Msg
// @Failure      502  {object}  response.Msg
// @Router       /api/gateways/instamojo/create [post]
func ApiInstamojoCreate(client *instamojo.Client, mgr ledger.Manager, cfg *config.Config, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req gatewayCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		paymentType := req.PaymentType
		if paymentType == "" {
			paymentType = types.PaymentTypePremiumContent
		}

		// Already unlocked: no point opening a checkout.
		if paid, payment, err := mgr.Check(c.Request.Context(), req.UserID, req.ContentID, paymentType); err == nil && paid {
			c.JSON(http.StatusOK, gin.H{"paid": true, "alreadyPaid": true, "payment": payment})
			return
		}

		pr, err := client.CreatePaymentRequest(c.Request.Context(), &instamojo.CreateParams{
			Purpose:     req.ContentID,
			Amount:      paiseToRupees(req.Amount),
			BuyerName:   req.BuyerName,
			Email:       req.Email,
			Phone:       req.Phone,
			RedirectURL: strings.TrimSuffix(cfg.FrontendURL, "/") + "/payment/status",
			Webhook:     strings.TrimSuffix(cfg.BackendURL, "/") + "/api/gateways/instamojo/webhook",
		})
		if err != nil {
			logctx.FromGin(c, log).Errorw("instamojo_create_error", "error", err.Error())
			response.Error(c, http.StatusBadGateway, "payment gateway unavailable")
			return
		}

		res, err := mgr.CreatePending(c.Request.Context(), &ledger.SubmitRequest{
			UserID:        req.UserID,
			ContentID:     req.ContentID,
			Amount:        req.Amount,
			TransactionID: pr.ID,
			PaymentType:   paymentType,
			Gateway:       types.PaymentGatewayInstamojo,
		}, pr.LongURL)
		if err != nil {
			writeSubmitError(c, log, err)
			return
		}

		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		c.JSON(status, gin.H{
			"paid":        res.Paid(),
			"alreadyPaid": res.AlreadyPaid,
			"payment":     res.Payment,
			"paymentUrl":  pr.LongURL,
		})
	}
}

// resolveInstamojoStatus fetches the gateway-side status and applies it to
// the ledger when terminal.
func resolveInstamojoStatus(c *gin.Context, client *instamojo.Client, mgr ledger.Manager, log *zap.SugaredLogger, transactionID string) {
	pr, err := client.GetPaymentRequest(c.Request.Context(), transactionID)
	if err != nil {
		logctx.FromGin(c, log).Errorw("instamojo_status_error", "error", err.Error())
		response.Error(c, http.StatusBadGateway, "payment gateway unavailable")
		return
	}

	var event types.GatewayEventStatus
	switch strings.ToLower(pr.Status) {
	case "completed":
		event = types.GatewayEventCompleted
	case "failed":
		event = types.GatewayEventFailed
	case "expired":
		event = types.GatewayEventExpired
	}

	if event == "" {
		payment, err := mgr.GetByTransactionID(c.Request.Context(), transactionID)
		if err != nil {
			if errors.Is(err, ledger.ErrPaymentNotFound) {
				response.Error(c, http.StatusNotFound, err.Error())
				return
			}
			logctx.FromGin(c, log).Errorw("instamojo_status_lookup_error", "error", err.Error())
			response.InternalError(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": pr.Status, "payment": payment})
		return
	}

	payment, err := mgr.ApplyGatewayStatus(c.Request.Context(), transactionID, event)
	if err != nil {
		if errors.Is(err, ledger.ErrPaymentNotFound) {
			response.Error(c, http.StatusNotFound, err.Error())
			return
		}
		logctx.FromGin(c, log).Errorw("instamojo_status_apply_error", "error", err.Error())
		response.InternalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": pr.Status, "payment": payment})
}

// @Summary      Instamojo Status
// @Description  Fetches the checkout status and settles the ledger entry when terminal.
// @Tags         Gateway
// @Produce      json
// @Param        transactionId  path  string  true  "Payment request id"
// @Success      200  {object}  handlers.SwaggerPayment
// @Failure      404  {object}  response.Msg
// @Router       /api/gateways/instamojo/status/{transactionId} [get]
func ApiInstamojoStatus(client *instamojo.Client, mgr ledger.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolveInstamojoStatus(c, client, mgr, log, c.Param("transactionId"))
	}
}

// @Summary      Verify Instamojo Payment
// @Description  Client-initiated verification after redirect; same settlement path as the status check.
// @Tags         Gateway
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  response.Msg
// @Router       /api/gateways/instamojo/verify [post]
func ApiInstamojoVerify(client *instamojo.Client, mgr ledger.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			TransactionID string `json:"transactionId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		resolveInstamojoStatus(c, client, mgr, log, req.TransactionID)
	}
}

func webhookHandler(h *notification.NotificationHandler, gateway types.PaymentGateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		logctx.FromGin(c, h.Logger).Infow("webhook_received", "gateway", gateway)

		if _, err := h.HandleNotification(c, gateway); err != nil {
			logctx.FromGin(c, h.Logger).Errorw("webhook_handle_error", "gateway", gateway, "error", err.Error())
			switch {
			case errors.Is(err, notification.ErrMalformed):
				response.Error(c, http.StatusBadRequest, err.Error())
			case errors.Is(err, ledger.ErrPaymentNotFound):
				response.Error(c, http.StatusNotFound, err.Error())
			default:
				response.InternalError(c)
			}
			return
		}
		logctx.FromGin(c, h.Logger).Infow("webhook_handled", "gateway", gateway)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// @Summary      Instamojo Webhook
// @Description  Handles the form-encoded settlement callback. MAC-verified; idempotent under redelivery.
// @Tags         Webhook
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  response.Msg
// @Failure      404  {object}  response.Msg
// @Router       /api/gateways/instamojo/webhook [post]
func ApiInstamojoWebhook(h *notification.NotificationHandler) gin.HandlerFunc {
	return webhookHandler(h, types.PaymentGatewayInstamojo)
}

// @Summary      Create PhonePe Checkout
// @Description  Starts a pay-page transaction and a pending ledger entry resolved later by callback.
// @Tags         Gateway
// @Accept       json
// @Produce      json
// @Param        request body handlers.gatewayCreateRequest true "Checkout request"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  response.Msg
// @Failure      502  {object}  response.Msg
// @Router       /api/gateways/phonepe/create [post]
func ApiPhonePeCreate(client *phonepe.Client, mgr ledger.Manager, cfg *config.Config, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req gatewayCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		paymentType := req.PaymentType
		if paymentType == "" {
			paymentType = types.PaymentTypePremiumContent
		}

		if paid, payment, err := mgr.Check(c.Request.Context(), req.UserID, req.ContentID, paymentType); err == nil && paid {
			c.JSON(http.StatusOK, gin.H{"paid": true, "alreadyPaid": true, "payment": payment})
			return
		}

		transactionID := tool.GenerateUUIDV7()
		page, err := client.CreatePayment(c.Request.Context(), &phonepe.CreateParams{
			MerchantTransactionID: transactionID,
			AmountPaise:           req.Amount,
			UserID:                req.UserID,
			RedirectURL:           strings.TrimSuffix(cfg.FrontendURL, "/") + "/payment/status",
			CallbackURL:           strings.TrimSuffix(cfg.BackendURL, "/") + "/api/gateways/phonepe/webhook",
		})
		if err != nil {
			logctx.FromGin(c, log).Errorw("phonepe_create_error", "error", err.Error())
			response.Error(c, http.StatusBadGateway, "payment gateway unavailable")
			return
		}

		res, err := mgr.CreatePending(c.Request.Context(), &ledger.SubmitRequest{
			UserID:        req.UserID,
			ContentID:     req.ContentID,
			Amount:        req.Amount,
			TransactionID: transactionID,
			PaymentType:   paymentType,
			Gateway:       types.PaymentGatewayPhonePe,
		}, page.URL)
		if err != nil {
			writeSubmitError(c, log, err)
			return
		}

		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		c.JSON(status, gin.H{
			"paid":        res.Paid(),
			"alreadyPaid": res.AlreadyPaid,
			"payment":     res.Payment,
			"paymentUrl":  page.URL,
		})
	}
}

// @Summary      PhonePe Status
// @Description  Fetches the transaction state and settles the ledger entry when terminal.
// @Tags         Gateway
// @Produce      json
// @Param        transactionId  path  string  true  "Merchant transaction id"
// @Success      200  {object}  handlers.SwaggerPayment
// @Failure      404  {object}  response.Msg
// @Router       /api/gateways/phonepe/status/{transactionId} [get]
func ApiPhonePeStatus(client *phonepe.Client, mgr ledger.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		transactionID := c.Param("transactionId")
		state, err := client.CheckStatus(c.Request.Context(), transactionID)
		if err != nil {
			logctx.FromGin(c, log).Errorw("phonepe_status_error", "error", err.Error())
			response.Error(c, http.StatusBadGateway, "payment gateway unavailable")
			return
		}

		var event types.GatewayEventStatus
		switch state {
		case "COMPLETED":
			event = types.GatewayEventCompleted
		case "FAILED":
			event = types.GatewayEventFailed
		case "EXPIRED":
			event = types.GatewayEventExpired
		}

		var payment any
		if event != "" {
			p, err := mgr.ApplyGatewayStatus(c.Request.Context(), transactionID, event)
			if err != nil {
				if errors.Is(err, ledger.ErrPaymentNotFound) {
					response.Error(c, http.StatusNotFound, err.Error())
					return
				}
				logctx.FromGin(c, log).Errorw("phonepe_status_apply_error", "error", err.Error())
				response.InternalError(c)
				return
			}
			payment = p
		} else {
			p, err := mgr.GetByTransactionID(c.Request.Context(), transactionID)
			if err != nil {
				if errors.Is(err, ledger.ErrPaymentNotFound) {
					response.Error(c, http.StatusNotFound, err.Error())
					return
				}
				logctx.FromGin(c, log).Errorw("phonepe_status_lookup_error", "error", err.Error())
				response.InternalError(c)
				return
			}
			payment = p
		}
		c.JSON(http.StatusOK, gin.H{"state": state, "payment": payment})
	}
}

// @Summary      PhonePe Webhook
// @Description  Handles the S2S callback. X-VERIFY checked; idempotent under redelivery.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  response.Msg
// @Failure      404  {object}  response.Msg
// @Router       /api/gateways/phonepe/webhook [post]
func ApiPhonePeWebhook(h *notification.NotificationHandler) gin.HandlerFunc {
	return webhookHandler(h, types.PaymentGatewayPhonePe)
}

// @Summary      Create PayU Checkout
// @Description  Creates a pending ledger entry and returns the signed form fields for the hosted checkout.
// @Tags         Gateway
// @Accept       json
// @Produce      json
// @Param        request body handlers.gatewayCreateRequest true "Checkout request"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  response.Msg
// @Router       /api/gateways/payu/create [post]
func ApiPayUCreate(mgr ledger.Manager, cfg *config.Config, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req gatewayCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		paymentType := req.PaymentType
		if paymentType == "" {
			paymentType = types.PaymentTypePremiumContent
		}

		if paid, payment, err := mgr.Check(c.Request.Context(), req.UserID, req.ContentID, paymentType); err == nil && paid {
			c.JSON(http.StatusOK, gin.H{"paid": true, "alreadyPaid": true, "payment": payment})
			return
		}

		transactionID := tool.GenerateUUIDV7()
		res, err := mgr.CreatePending(c.Request.Context(), &ledger.SubmitRequest{
			UserID:        req.UserID,
			ContentID:     req.ContentID,
			Amount:        req.Amount,
			TransactionID: transactionID,
			PaymentType:   paymentType,
			Gateway:       types.PaymentGatewayPayU,
		}, "")
		if err != nil {
			writeSubmitError(c, log, err)
			return
		}

		// PayU has no create API; the browser posts these signed fields to
		// the hosted checkout directly.
		params := &payu.RequestParams{
			TxnID:       transactionID,
			Amount:      paiseToRupees(req.Amount),
			ProductInfo: req.ContentID,
			FirstName:   req.BuyerName,
			Email:       req.Email,
		}
		form := gin.H{
			"key":         cfg.PayU.MerchantKey,
			"txnid":       params.TxnID,
			"amount":      params.Amount,
			"productinfo": params.ProductInfo,
			"firstname":   params.FirstName,
			"email":       params.Email,
			"phone":       req.Phone,
			"surl":        strings.TrimSuffix(cfg.BackendURL, "/") + "/api/gateways/payu/callback",
			"furl":        strings.TrimSuffix(cfg.BackendURL, "/") + "/api/gateways/payu/callback",
			"hash":        payu.RequestHash(cfg.PayU, params),
		}

		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		c.JSON(status, gin.H{
			"paid":        res.Paid(),
			"alreadyPaid": res.AlreadyPaid,
			"payment":     res.Payment,
			"action":      strings.TrimSuffix(cfg.PayU.BaseURL, "/") + "/_payment",
			"form":        form,
		})
	}
}

// @Summary      PayU Callback
// @Description  Handles the form-encoded return callback. Hash-verified; idempotent under redelivery.
// @Tags         Webhook
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  response.Msg
// @Failure      404  {object}  response.Msg
// @Router       /api/gateways/payu/callback [post]
func ApiPayUCallback(h *notification.NotificationHandler) gin.HandlerFunc {
	return webhookHandler(h, types.PaymentGatewayPayU)
}

func RegisterGatewayRoutes(r gin.IRouter, imClient *instamojo.Client, ppClient *phonepe.Client,
	mgr ledger.Manager, notifHandler *notification.NotificationHandler, cfg *config.Config, log *zap.SugaredLogger) {
	im := r.Group("/instamojo")
	im.POST("/create", ApiInstamojoCreate(imClient, mgr, cfg, log))
	im.GET("/status/:transactionId", ApiInstamojoStatus(imClient, mgr, log))
	im.POST("/verify", ApiInstamojoVerify(imClient, mgr, log))
	im.POST("/webhook", ApiInstamojoWebhook(notifHandler))

	pp := r.Group("/phonepe")
	pp.POST("/create", ApiPhonePeCreate(ppClient, mgr, cfg, log))
	pp.GET("/status/:transactionId", ApiPhonePeStatus(ppClient, mgr, log))
	pp.POST("/webhook", ApiPhonePeWebhook(notifHandler))

	pu := r.Group("/payu")
	pu.POST("/create", ApiPayUCreate(mgr, cfg, log))
	pu.POST("/callback", ApiPayUCallback(notifHandler))
}
