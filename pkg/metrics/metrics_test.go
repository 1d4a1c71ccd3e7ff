package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	c := NewCollector("myhealth-api", reg)

	r := gin.New()
	r.Use(c.Middleware())
	r.GET("/items/:id", func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() != "myhealth_api_http_requests_total" {
			continue
		}
		require.Len(t, f.GetMetric(), 1)
		m := f.GetMetric()[0]
		assert.Equal(t, float64(3), m.GetCounter().GetValue())
		for _, l := range m.GetLabel() {
			if l.GetName() == "path" {
				assert.Equal(t, "/items/:id", l.GetValue())
			}
		}
		found = true
	}
	assert.True(t, found)
}

func TestNewCollector_SanitizesNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("myhealth-api", reg)
	c.PatientsRegisteredTotal.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "myhealth_api_portal_patients_registered_total")
}
