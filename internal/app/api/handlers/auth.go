package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mw "github.com/climaxott/ledger/internal/app/api/middleware"
	usersvc "github.com/climaxott/ledger/internal/app/service/user"
	"github.com/climaxott/ledger/pkg/config"
	"github.com/climaxott/ledger/pkg/logctx"
	"github.com/climaxott/ledger/pkg/response"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Summary      Register
// @Description  Creates a user account and returns a JWT.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body user.RegisterRequest true "Registration request"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  response.Msg
// @Failure      409  {object}  response.Msg
// @Router       /api/auth/register [post]
func ApiRegister(svc *usersvc.Service, cfg *config.Config, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req usersvc.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}

		u, err := svc.Register(c.Request.Context(), &req)
		if err != nil {
			switch {
			case errors.Is(err, usersvc.ErrValidation):
				response.Error(c, http.StatusBadRequest, err.Error())
			case errors.Is(err, usersvc.ErrEmailTaken):
				response.Error(c, http.StatusConflict, err.Error())
			default:
				logctx.FromGin(c, log).Errorw("register_error", "error", err.Error())
				response.InternalError(c)
			}
			return
		}

		token, err := mw.GenerateToken(u.ID, u.Role, cfg.Auth.JWTSecret,
			time.Duration(cfg.Auth.TokenExpiry)*time.Minute)
		if err != nil {
			logctx.FromGin(c, log).Errorw("token_issue_error", "error", err.Error())
			response.InternalError(c)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user": u, "token": token})
	}
}

// @Summary      Login
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body handlers.loginRequest true "Login request"
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  response.Msg
// @Router       /api/auth/login [post]
func ApiLogin(svc *usersvc.Service, cfg *config.Config, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}

		u, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, usersvc.ErrInvalidCredentials) {
				response.Error(c, http.StatusUnauthorized, err.Error())
				return
			}
			logctx.FromGin(c, log).Errorw("login_error", "error", err.Error())
			response.InternalError(c)
			return
		}

		token, err := mw.GenerateToken(u.ID, u.Role, cfg.Auth.JWTSecret,
			time.Duration(cfg.Auth.TokenExpiry)*time.Minute)
		if err != nil {
			logctx.FromGin(c, log).Errorw("token_issue_error", "error", err.Error())
			response.InternalError(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": u, "token": token})
	}
}

// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  response.Msg
// @Router       /api/auth/me [get]
// @Security     BearerAuth
func ApiMe(svc *usersvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.Get(c.Request.Context(), c.GetString("userID"))
		if err != nil {
			if errors.Is(err, usersvc.ErrUserNotFound) {
				response.Error(c, http.StatusNotFound, err.Error())
				return
			}
			logctx.FromGin(c, log).Errorw("me_error", "error", err.Error())
			response.InternalError(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": u})
	}
}

func RegisterAuthRoutes(r gin.IRouter, svc *usersvc.Service, cfg *config.Config, log *zap.SugaredLogger) {
	r.POST("/register", ApiRegister(svc, cfg, log))
	r.POST("/login", ApiLogin(svc, cfg, log))
	r.GET("/me", mw.JwtAuthMiddleware(cfg), ApiMe(svc, log))
}
