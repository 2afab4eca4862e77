package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveReconcileRun(t *testing.T) {
	before := testutil.ToFloat64(ReconcileRunCounter.WithLabelValues("merge", OutcomeFailure))

	ObserveReconcileRun("merge", errors.New("bmc down"), 10*time.Millisecond)

	after := testutil.ToFloat64(ReconcileRunCounter.WithLabelValues("merge", OutcomeFailure))
	assert.Equal(t, before+1, after)
}

func TestObserveBMCFetch(t *testing.T) {
	before := testutil.ToFloat64(BMCFetchCounter.WithLabelValues("redfish", OutcomeSuccess))
	ObserveBMCFetch("redfish", nil, time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(BMCFetchCounter.WithLabelValues("redfish", OutcomeSuccess)))
}

func TestHandler(t *testing.T) {
	ObserveReconcileRun("compare", nil, time.Millisecond)

	app := fiber.New()
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "beryll_reconcile_runs_total")
}
