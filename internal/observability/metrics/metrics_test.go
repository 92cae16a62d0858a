package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(valuationRuns.WithLabelValues(resultError))
	ObserveRun(time.Now(), errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(valuationRuns.WithLabelValues(resultError)))

	rowsBefore := testutil.ToFloat64(valuationRows.WithLabelValues(OutcomeTail))
	AddRows(OutcomeTail, 36)
	AddRows(OutcomeTail, 0)
	assert.Equal(t, rowsBefore+36, testutil.ToFloat64(valuationRows.WithLabelValues(OutcomeTail)))

	ObserveHTTP("", 404)
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues("unmatched", "404")))
}
