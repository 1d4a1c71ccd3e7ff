package v1

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/dermatology"
	"github.com/gin-gonic/gin"
)

const imageFormField = "image"

// submitImage takes a multipart upload in the "image" field.
func (h *Handler) submitImage(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		// Leave room for the multipart envelope; the service enforces the exact limit.
		bodyLimit := h.maxUploadBytes + 1<<20
		if c.Request.ContentLength > bodyLimit {
			respondServiceError(c, h.log, dermatology.ErrImageTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, bodyLimit)
	}

	fh, err := c.FormFile(imageFormField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondServiceError(c, h.log, dermatology.ErrImageTooLarge)
			return
		}
		respondError(c, http.StatusBadRequest, "an image file is required in the \"image\" field")
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "could not read uploaded file")
		return
	}
	defer f.Close()

	limit := fh.Size
	if h.maxUploadBytes > 0 && limit > h.maxUploadBytes {
		respondServiceError(c, h.log, dermatology.ErrImageTooLarge)
		return
	}
	data, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		respondError(c, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	a, err := h.svc.Dermatology.Submit(c.Request.Context(), callerFrom(c), &dermatology.SubmitImageCommand{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondAccepted(c, a)
}

func (h *Handler) listAnalyses(c *gin.Context) {
	as, err := h.svc.Dermatology.List(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, as)
}

func (h *Handler) getAnalysis(c *gin.Context) {
	a, err := h.svc.Dermatology.Get(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, a)
}

func (h *Handler) cancelAnalysis(c *gin.Context) {
	a, err := h.svc.Dermatology.Cancel(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, a)
}
