// Package legacy keeps the old stub endpoints (appointments.php, records.php,
// drugs.php, auth.php) answering for clients that still call them. Responses
// are canned and nothing is stored.
package legacy

import (
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const createdAtLayout = "2006-01-02 15:04:05"

type Handler struct {
	log *zap.Logger
	now func() time.Time
}

func NewHandler(log *zap.Logger) *Handler {
	return &Handler{log: log, now: time.Now}
}

// Dispatch routes on the last path segment, so /api.php/auth.php and
// /auth.php reach the same endpoint. Mount it as the engine's NoRoute handler.
func (h *Handler) Dispatch(c *gin.Context) {
	switch path.Base(c.Request.URL.Path) {
	case "appointments.php":
		h.appointments(c)
	case "records.php":
		h.records(c)
	case "drugs.php":
		h.drugs(c)
	case "auth.php":
		h.auth(c)
	default:
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Endpoint not found"})
	}
}

type appointmentRequest struct {
	Doctor string `json:"doctor"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Reason string `json:"reason"`
}

type appointment struct {
	ID        string `json:"id"`
	Doctor    string `json:"doctor"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Reason    string `json:"reason"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func (h *Handler) appointments(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodPost:
		var req appointmentRequest
		bindLenient(c, &req)

		now := h.now().UTC()
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Appointment booked successfully",
			"appointment": appointment{
				ID:        uniqueID(now),
				Doctor:    req.Doctor,
				Date:      req.Date,
				Time:      req.Time,
				Reason:    req.Reason,
				Status:    "confirmed",
				CreatedAt: now.Format(createdAtLayout),
			},
		})
	case http.MethodGet:
		c.JSON(http.StatusOK, gin.H{"success": true, "appointments": []appointment{}})
	default:
		methodNotAllowed(c)
	}
}

type record struct {
	ID        int    `json:"id"`
	Date      string `json:"date"`
	Doctor    string `json:"doctor"`
	Diagnosis string `json:"diagnosis"`
	Notes     string `json:"notes"`
}

func (h *Handler) records(c *gin.Context) {
	if c.Request.Method != http.MethodGet {
		methodNotAllowed(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"records": []record{{
			ID:        1,
			Date:      "2026-01-20",
			Doctor:    "Dr. Ahmed Hassan",
			Diagnosis: "Routine Check-up",
			Notes:     "Patient is in good health",
		}},
	})
}

type drugsRequest struct {
	Drugs []string `json:"drugs"`
}

// drugs never looks anything up; the real check lives at /api/v1/drug-checks.
func (h *Handler) drugs(c *gin.Context) {
	var req drugsRequest
	bindLenient(c, &req)
	if req.Drugs == nil {
		req.Drugs = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"drugs":        req.Drugs,
		"interactions": []struct{}{},
		"severity":     "none",
	})
}

type authRequest struct {
	Action string `json:"action"`
	Email  string `json:"email"`
}

type legacyUser struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// auth accepts any login. Real authentication is /api/v1/auth/login.
func (h *Handler) auth(c *gin.Context) {
	var req authRequest
	bindLenient(c, &req)

	if req.Action != "login" {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Invalid action"})
		return
	}

	token, err := auth.NewOpaqueToken()
	if err != nil {
		h.log.Error("failed to generate legacy token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user":    legacyUser{ID: 1, Email: req.Email, Name: "User Name"},
	})
}

// bindLenient decodes what it can; a missing or malformed body leaves the
// zero values in place.
func bindLenient(c *gin.Context, obj any) {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return
	}
	_ = c.ShouldBindJSON(obj)
}

func methodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"success": false, "message": "Method not allowed"})
}

// uniqueID mimics the 13 hex digit time-based IDs the old endpoint issued.
func uniqueID(t time.Time) string {
	return fmt.Sprintf("%08x%05x", t.Unix(), t.Nanosecond()/1000)
}
