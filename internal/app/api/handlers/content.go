package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/climaxott/ledger/internal/app/service/catalog"
	"github.com/climaxott/ledger/internal/app/service/ledger"
	"github.com/climaxott/ledger/pkg/logctx"
	"github.com/climaxott/ledger/pkg/response"
	"github.com/climaxott/ledger/pkg/types"
)

// @Summary      List Content
// @Description  Returns active catalog entries.
// @Tags         Content
// @Produce      json
// @Success      200  {array}  models.Content
// @Router       /api/content [get]
func ApiListContent(svc *catalog.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		includeInactive := c.Query("all") == "true"
		items, err := svc.List(c.Request.Context(), includeInactive)
		if err != nil {
			logctx.FromGin(c, log).Errorw("content_list_error", "error", err.Error())
			response.InternalError(c)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// @Summary      Get Content
// @Description  Returns one catalog entry. When userId is given, includes whether that user has unlocked it.
// @Tags         Content
// @Produce      json
// @Param        id      path   string  true   "Content id"
// @Param        userId  query  string  false  "User id for the paid flag"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  response.Msg
// @Router       /api/content/{id} [get]
func ApiGetContent(svc *catalog.Service, mgr ledger.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, catalog.ErrContentNotFound) {
				response.Error(c, http.StatusNotFound, err.Error())
				return
			}
			logctx.FromGin(c, log).Errorw("content_get_error", "error", err.Error())
			response.InternalError(c)
			return
		}

		out := gin.H{"content": item}
		userID := c.Query("userId")
		if userID == "" {
			userID = c.GetString("userID")
		}
		if userID != "" {
			paid, _, err := mgr.Check(c.Request.Context(), userID, item.ID, types.PaymentTypePremiumContent)
			if err != nil {
				logctx.FromGin(c, log).Errorw("content_paid_check_error", "error", err.Error())
			} else {
				out["paid"] = paid
			}
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary      Create Content (Admin)
// @Tags         Content
// @Accept       json
// @Produce      json
// @Param        request body catalog.UpsertRequest true "Content"
// @Success      201  {object}  models.Content
// @Failure      400  {object}  response.Msg
// @Router       /api/content [post]
func ApiCreateContent(svc *catalog.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.UpsertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		item, err := svc.Create(c.Request.Context(), &req)
		if err != nil {
			if errors.Is(err, catalog.ErrValidation) {
				response.Error(c, http.StatusBadRequest, err.Error())
				return
			}
			logctx.FromGin(c, log).Errorw("content_create_error", "error", err.Error())
			response.InternalError(c)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

// @Summary      Update Content (Admin)
// @Tags         Content
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "Content id"
// @Param        request body catalog.UpsertRequest true "Fields to update"
// @Success      200  {object}  models.Content
// @Failure      404  {object}  response.Msg
// @Router       /api/content/{id} [put]
func ApiUpdateContent(svc *catalog.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.UpsertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		item, err := svc.Update(c.Request.Context(), c.Param("id"), &req)
		if err != nil {
			switch {
			case errors.Is(err, catalog.ErrContentNotFound):
				response.Error(c, http.StatusNotFound, err.Error())
			case errors.Is(err, catalog.ErrValidation):
				response.Error(c, http.StatusBadRequest, err.Error())
			default:
				logctx.FromGin(c, log).Errorw("content_update_error", "error", err.Error())
				response.InternalError(c)
			}
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// @Summary      Delete Content (Admin)
// @Tags         Content
// @Produce      json
// @Param        id  path  string  true  "Content id"
// @Success      200  {object}  response.Msg
// @Failure      404  {object}  response.Msg
// @Router       /api/content/{id} [delete]
func ApiDeleteContent(svc *catalog.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			if errors.Is(err, catalog.ErrContentNotFound) {
				response.Error(c, http.StatusNotFound, err.Error())
				return
			}
			logctx.FromGin(c, log).Errorw("content_delete_error", "error", err.Error())
			response.InternalError(c)
			return
		}
		c.JSON(http.StatusOK, response.Msg{Message: "Content deleted"})
	}
}

func RegisterContentRoutes(r gin.IRouter, admin gin.IRouter, svc *catalog.Service, mgr ledger.Manager, log *zap.SugaredLogger) {
	r.GET("", ApiListContent(svc, log))
	r.GET("/:id", ApiGetContent(svc, mgr, log))

	admin.POST("", ApiCreateContent(svc, log))
	admin.PUT("/:id", ApiUpdateContent(svc, log))
	admin.DELETE("/:id", ApiDeleteContent(svc, log))
}
