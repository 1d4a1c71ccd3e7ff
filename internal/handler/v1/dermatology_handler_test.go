package v1

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func multipartImage(t *testing.T, size int) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(imageFormField, "rash.png")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0x89}, size))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestSubmitImage_OversizedBodyIs413(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{log: zap.NewNop(), maxUploadBytes: 1024}
	r := gin.New()
	r.POST("/analyses", h.submitImage)

	body, contentType := multipartImage(t, 2<<20)
	req := httptest.NewRequest(http.MethodPost, "/analyses", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "too large")
}

func TestSubmitImage_MissingFieldIs400(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{log: zap.NewNop(), maxUploadBytes: 1024}
	r := gin.New()
	r.POST("/analyses", h.submitImage)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("note", "no file"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyses", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
