package v1

import (
	"github.com/gin-gonic/gin"
)

type addMedicationRequest struct {
	Name string `json:"name"`
}

type checkDrugsRequest struct {
	Drugs []string `json:"drugs"`
}

func (h *Handler) listMedications(c *gin.Context) {
	list, err := h.svc.Medications.Medications(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, list)
}

func (h *Handler) addMedication(c *gin.Context) {
	var req addMedicationRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.svc.Medications.AddMedication(c.Request.Context(), callerFrom(c), req.Name)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, res)
}

func (h *Handler) removeMedication(c *gin.Context) {
	if err := h.svc.Medications.RemoveMedication(c.Request.Context(), callerFrom(c), c.Param("name")); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, "medication removed")
}

func (h *Handler) clearMedications(c *gin.Context) {
	if err := h.svc.Medications.ClearMedications(c.Request.Context(), callerFrom(c)); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondMessage(c, "medication list cleared")
}

func (h *Handler) checkDrugs(c *gin.Context) {
	var req checkDrugsRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.svc.Medications.Check(c.Request.Context(), callerFrom(c), req.Drugs)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, res)
}

func (h *Handler) drugCheckHistory(c *gin.Context) {
	history, err := h.svc.Medications.History(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, history)
}
