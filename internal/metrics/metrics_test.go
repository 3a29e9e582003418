package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveMutation(t *testing.T) {
	okBefore := testutil.ToFloat64(Mutations.WithLabelValues("closeBloodRequest", "ok"))
	errBefore := testutil.ToFloat64(Mutations.WithLabelValues("closeBloodRequest", "error"))

	ObserveMutation("closeBloodRequest", nil)
	ObserveMutation("closeBloodRequest", errors.New("boom"))
	ObserveMutation("closeBloodRequest", nil)

	assert.Equal(t, okBefore+2, testutil.ToFloat64(Mutations.WithLabelValues("closeBloodRequest", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(Mutations.WithLabelValues("closeBloodRequest", "error")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	OpenRequests.WithLabelValues("O-", "critical").Set(4)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `blood_open_requests{blood_group="O-",urgency="critical"} 4`)
	assert.Contains(t, rec.Body.String(), "blood_active_subscriptions")
}
