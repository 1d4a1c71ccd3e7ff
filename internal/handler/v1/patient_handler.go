package v1

import (
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/patient"
	"github.com/gin-gonic/gin"
)

type registerPatientRequest struct {
	Name           string      `json:"name"`
	Age            int         `json:"age"`
	Sex            patient.Sex `json:"sex"`
	ChiefComplaint string      `json:"chief_complaint"`
	Phone          string      `json:"phone"`
}

func (h *Handler) registerPatient(c *gin.Context) {
	var req registerPatientRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.svc.Patients.Register(c.Request.Context(), callerFrom(c), &patient.RegisterPatientCommand{
		Name:           req.Name,
		Age:            req.Age,
		Sex:            req.Sex,
		ChiefComplaint: req.ChiefComplaint,
		Phone:          req.Phone,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, p)
}

// listPatients serves both the roster and the admin search (?q=).
func (h *Handler) listPatients(c *gin.Context) {
	order := patient.OrderByName
	if c.Query("order") == string(patient.OrderByRegistration) {
		order = patient.OrderByRegistration
	}

	ps, err := h.svc.Patients.Search(c.Request.Context(), patient.SearchQuery{
		Query: c.Query("q"),
		Order: order,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, ps)
}

func (h *Handler) getPatient(c *gin.Context) {
	p, err := h.svc.Patients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, p)
}
