package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/chat"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/dermatology"
	mr "github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/medical_record"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondAccepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, APIResponse[any]{Data: data})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, APIResponse[any]{Message: message})
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, appointment.ErrAppointmentNotFound),
		errors.Is(err, mr.ErrRecordNotFound),
		errors.Is(err, medication.ErrMedicationNotFound),
		errors.Is(err, chat.ErrConversationNotFound),
		errors.Is(err, dermatology.ErrAnalysisNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, appointment.ErrAppointmentConflict),
		errors.Is(err, medication.ErrDuplicateMedication),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrNationalIDTaken),
		errors.Is(err, dermatology.ErrAnalysisFinished):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, appointment.ErrScheduledInPast),
		errors.Is(err, appointment.ErrInvalidStatusTransition),
		errors.Is(err, appointment.ErrInvalidDate),
		errors.Is(err, appointment.ErrInvalidTime),
		errors.Is(err, medication.ErrMedicationRequired),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, dermatology.ErrNotAnImage),
		errors.Is(err, dermatology.ErrEmptyImage):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, dermatology.ErrImageTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})

	case errors.Is(err, domain.ErrAnonymous):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not logged in"})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})

	case errors.Is(err, service.ErrAccountLocked):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "account temporarily locked",
			Code:  "ACCOUNT_LOCKED",
		})

	default:
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", requestIDFrom(c)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}

	return true
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}

// callerFrom describes the request for the service layer.
func callerFrom(c *gin.Context) service.Caller {
	caller := service.Caller{
		SessionID: sessionIDFrom(c),
		IP:        c.ClientIP(),
		RequestID: requestIDFrom(c),
	}
	if claims, ok := claimsFrom(c); ok {
		caller.UserEmail = claims.Email
	}
	return caller
}
