// Package v1 serves the portal's JSON API under /api/v1.
package v1

import (
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/config"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/service"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Services struct {
	Patients     *service.PatientService
	Appointments *service.AppointmentService
	Medications  *service.MedicationService
	Chat         *service.ChatService
	Dermatology  *service.DermatologyService
	Records      *service.MedicalRecordService
	Contact      *service.ContactService
	Auth         *service.AuthService
	Sessions     *service.SessionService
	Stats        *service.StatsService
	Audit        *service.AuditService
}

type Handler struct {
	svc            Services
	jwt            *auth.JWTManager
	log            *zap.Logger
	maxUploadBytes int64
	authLimiter    *RateLimiter
}

func NewHandler(svc Services, jwtManager *auth.JWTManager, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{
		svc:            svc,
		jwt:            jwtManager,
		log:            log,
		maxUploadBytes: cfg.Media.MaxUploadBytes,
		authLimiter:    NewRateLimiter(rate.Limit(float64(cfg.RateLimit.AuthRequestsPerMinute)/60), cfg.RateLimit.AuthRequestsPerMinute),
	}
}

// Register mounts every v1 route on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	patients := rg.Group("/patients")
	patients.POST("", h.registerPatient)
	patients.GET("", h.listPatients)
	patients.GET("/:id", h.getPatient)

	appointments := rg.Group("/appointments")
	appointments.POST("", h.bookAppointment)
	appointments.GET("", h.listAppointments)
	appointments.GET("/:id", h.getAppointment)
	appointments.POST("/:id/cancel", h.cancelAppointment)
	appointments.POST("/:id/reschedule", h.rescheduleAppointment)

	medications := rg.Group("/medications")
	medications.GET("", h.listMedications)
	medications.POST("", h.addMedication)
	medications.DELETE("", h.clearMedications)
	medications.DELETE("/:name", h.removeMedication)

	checks := rg.Group("/drug-checks")
	checks.POST("", h.checkDrugs)
	checks.GET("", h.drugCheckHistory)

	conversations := rg.Group("/chat/conversations")
	conversations.POST("", h.startConversation)
	conversations.GET("", h.listConversations)
	conversations.GET("/:id", h.getConversation)
	conversations.POST("/:id/messages", h.sendMessage)

	analyses := rg.Group("/dermatology/analyses")
	analyses.POST("", h.submitImage)
	analyses.GET("", h.listAnalyses)
	analyses.GET("/:id", h.getAnalysis)
	analyses.DELETE("/:id", h.cancelAnalysis)

	records := rg.Group("/records")
	records.GET("", h.listRecords)
	records.POST("", h.addRecord)
	records.GET("/:id", h.getRecord)

	rg.POST("/contact", h.submitContact)

	authGroup := rg.Group("/auth")
	limited := authGroup.Group("", RateLimit(h.authLimiter, h.log))
	limited.POST("/register", h.register)
	limited.POST("/login", h.login)
	limited.POST("/refresh", h.refresh)
	authGroup.POST("/logout", h.logout)
	authGroup.GET("/me", h.me)
	authGroup.POST("/password", RequireAuth(h.jwt), h.changePassword)

	session := rg.Group("/session")
	session.GET("", h.sessionInfo)
	session.POST("/end", h.endSession)

	rg.GET("/stats/platform", h.platformStats)
	rg.GET("/audit", RequireAuth(h.jwt), h.recentAudit)
}
