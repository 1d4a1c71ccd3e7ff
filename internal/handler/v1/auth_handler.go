package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/service"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email      string      `json:"email"`
	Password   string      `json:"password"`
	FullName   string      `json:"full_name"`
	NationalID string      `json:"national_id"`
	Phone      string      `json:"phone"`
	Role       domain.Role `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.svc.Auth.Register(c.Request.Context(), callerFrom(c), &service.RegisterCommand{
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		NationalID: req.NationalID,
		Phone:      req.Phone,
		Role:       req.Role,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, p)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.svc.Auth.Login(c.Request.Context(), callerFrom(c), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, res)
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.svc.Auth.Logout(c.Request.Context(), callerFrom(c)); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, "logged out")
}

func (h *Handler) refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.svc.Auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, pair)
}

func (h *Handler) me(c *gin.Context) {
	p, err := h.svc.Auth.CurrentUser(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, p)
}

func (h *Handler) changePassword(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.svc.Auth.ChangePassword(c.Request.Context(), callerFrom(c), claims.Email, req.CurrentPassword, req.NewPassword)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, "password changed")
}

func (h *Handler) sessionInfo(c *gin.Context) {
	info, err := h.svc.Sessions.Info(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, info)
}

func (h *Handler) endSession(c *gin.Context) {
	if err := h.svc.Sessions.End(c.Request.Context(), callerFrom(c)); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, "session ended")
}

func (h *Handler) platformStats(c *gin.Context) {
	stats, err := h.svc.Stats.Platform(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, stats)
}

func (h *Handler) recentAudit(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	entries, err := h.svc.Audit.Recent(c.Request.Context(), claims.Role, parseQueryInt(c, "limit", 100))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, entries)
}
