package metrics_test

import (
	"math/big"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/joincivil/civil-tcr-registry/pkg/metrics"
)

func TestRecordOperation(t *testing.T) {
	before := metrics.OperationCount("propose", metrics.ResultOk)
	metrics.RecordOperation("propose", metrics.ResultOk, time.Now())
	metrics.RecordOperation("propose", metrics.ResultOk, time.Now())
	after := metrics.OperationCount("propose", metrics.ResultOk)
	if after-before != 2 {
		t.Errorf("Should have counted 2 operations: %v", after-before)
	}
}

func TestHandlerServesCollectors(t *testing.T) {
	metrics.RecordResolution("keep")
	metrics.RecordEscrowIn(big.NewInt(100))
	metrics.RecordEscrowOut(nil)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, "tcr_registry_challenge_resolution_count") {
		t.Errorf("Should have served resolution count")
	}
	if !strings.Contains(body, `tcr_registry_escrow_movement_total{direction="in"}`) {
		t.Errorf("Should have served escrow movement")
	}
	if metrics.ResolutionCount("keep") < 1 {
		t.Errorf("Should have counted the resolution")
	}
}
