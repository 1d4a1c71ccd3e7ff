package v1

import (
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/contact"
	mr "github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/medical_record"
	"github.com/gin-gonic/gin"
)

type addRecordRequest struct {
	Type      mr.RecordType `json:"type"`
	Date      string        `json:"date"`
	Doctor    string        `json:"doctor"`
	Diagnosis string        `json:"diagnosis"`
	Notes     string        `json:"notes"`
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (h *Handler) listRecords(c *gin.Context) {
	records, err := h.svc.Records.List(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, records)
}

func (h *Handler) getRecord(c *gin.Context) {
	rec, err := h.svc.Records.Get(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, rec)
}

func (h *Handler) addRecord(c *gin.Context) {
	var req addRecordRequest
	if !bindJSON(c, &req) {
		return
	}

	rec, err := h.svc.Records.Add(c.Request.Context(), callerFrom(c), &mr.CreateRecordCommand{
		Type:      req.Type,
		Date:      req.Date,
		Doctor:    req.Doctor,
		Diagnosis: req.Diagnosis,
		Notes:     req.Notes,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, rec)
}

func (h *Handler) submitContact(c *gin.Context) {
	var req contactRequest
	if !bindJSON(c, &req) {
		return
	}

	m, err := h.svc.Contact.Submit(c.Request.Context(), callerFrom(c), &contact.SubmitCommand{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, m)
}
