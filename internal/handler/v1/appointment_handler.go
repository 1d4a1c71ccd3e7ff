package v1

import (
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/appointment"
	"github.com/gin-gonic/gin"
)

type bookAppointmentRequest struct {
	Department string `json:"department"`
	Doctor     string `json:"doctor"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Reason     string `json:"reason"`
}

type rescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) bookAppointment(c *gin.Context) {
	var req bookAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.Appointments.Book(c.Request.Context(), callerFrom(c), &appointment.BookAppointmentCommand{
		Department: req.Department,
		Doctor:     req.Doctor,
		Date:       req.Date,
		Time:       req.Time,
		Reason:     req.Reason,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, a)
}

func (h *Handler) listAppointments(c *gin.Context) {
	as, err := h.svc.Appointments.List(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, as)
}

func (h *Handler) getAppointment(c *gin.Context) {
	a, err := h.svc.Appointments.Get(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, a)
}

func (h *Handler) cancelAppointment(c *gin.Context) {
	var req cancelRequest
	// The body is optional.
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.Appointments.Cancel(c.Request.Context(), callerFrom(c), c.Param("id"),
		&appointment.CancelAppointmentCommand{Reason: req.Reason})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, a)
}

func (h *Handler) rescheduleAppointment(c *gin.Context) {
	var req rescheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.Appointments.Reschedule(c.Request.Context(), callerFrom(c), c.Param("id"),
		&appointment.RescheduleCommand{Date: req.Date, Time: req.Time})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, a)
}
