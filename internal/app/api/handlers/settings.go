package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/climaxott/ledger/internal/app/service/settings"
	"github.com/climaxott/ledger/pkg/logctx"
	"github.com/climaxott/ledger/pkg/response"
)

type setSettingRequest struct {
	Value       json.RawMessage `json:"value" binding:"required"`
	Description string          `json:"description"`
}

// @Summary      List Settings
// @Tags         Settings
// @Produce      json
// @Success      200  {array}  models.Setting
// @Router       /api/settings [get]
func ApiListSettings(svc *settings.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.List(c.Request.Context())
		if err != nil {
			logctx.FromGin(c, log).Errorw("settings_list_error", "error", err.Error())
			response.InternalError(c)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// @Summary      Get Setting
// @Tags         Settings
// @Produce      json
// @Param        key  path  string  true  "Setting key"
// @Success      200  {object}  models.Setting
// @Failure      404  {object}  response.Msg
// @Router       /api/settings/{key} [get]
func ApiGetSetting(svc *settings.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		setting, err := svc.Get(c.Request.Context(), c.Param("key"))
		if err != nil {
			if errors.Is(err, settings.ErrSettingNotFound) {
				response.Error(c, http.StatusNotFound, err.Error())
				return
			}
			logctx.FromGin(c, log).Errorw("settings_get_error", "error", err.Error())
			response.InternalError(c)
			return
		}
		c.JSON(http.StatusOK, setting)
	}
}

// @Summary      Set Setting (Admin)
// @Description  Creates or replaces the value for a key.
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Param        key  path  string  true  "Setting key"
// @Param        request body handlers.setSettingRequest true "Value"
// @Success      200  {object}  models.Setting
// @Failure      400  {object}  response.Msg
// @Router       /api/settings/{key} [post]
func ApiSetSetting(svc *settings.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setSettingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		setting, err := svc.Set(c.Request.Context(), c.Param("key"), req.Value, req.Description)
		if err != nil {
			if errors.Is(err, settings.ErrValidation) {
				response.Error(c, http.StatusBadRequest, err.Error())
				return
			}
			logctx.FromGin(c, log).Errorw("settings_set_error", "error", err.Error())
			response.InternalError(c)
			return
		}
		c.JSON(http.StatusOK, setting)
	}
}

// @Summary      Delete Setting (Admin)
// @Tags         Settings
// @Produce      json
// @Param        key  path  string  true  "Setting key"
// @Success      200  {object}  response.Msg
// @Failure      404  {object}  response.Msg
// @Router       /api/settings/{key} [delete]
func ApiDeleteSetting(svc *settings.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("key")); err != nil {
			if errors.Is(err, settings.ErrSettingNotFound) {
				response.Error(c, http.StatusNotFound, err.Error())
				return
			}
			logctx.FromGin(c, log).Errorw("settings_delete_error", "error", err.Error())
			response.InternalError(c)
			return
		}
		c.JSON(http.StatusOK, response.Msg{Message: "Setting deleted"})
	}
}

func RegisterSettingsRoutes(r gin.IRouter, admin gin.IRouter, svc *settings.Service, log *zap.SugaredLogger) {
	r.GET("", ApiListSettings(svc, log))
	r.GET("/:key", ApiGetSetting(svc, log))

	admin.POST("/:key", ApiSetSetting(svc, log))
	admin.DELETE("/:key", ApiDeleteSetting(svc, log))
}
