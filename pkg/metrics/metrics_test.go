package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchmarny/bureau/pkg/finding"
)

func TestObserveLoad(t *testing.T) {
	r := New(false)

	r.ObserveLoad("lines.tsv", 120, 50*time.Millisecond, nil)
	r.ObserveLoad("lines.tsv", 0, time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.loads.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.loads.WithLabelValues(ResultError)))
	assert.Equal(t, 120.0, testutil.ToFloat64(r.rows))
}

func TestObserveReport(t *testing.T) {
	r := New(false)

	list := []finding.Finding{
		{Severity: finding.HighRisk},
		{Severity: finding.HighRisk},
		{Severity: finding.Positive},
	}
	r.ObserveReport(10*time.Millisecond, list, nil)
	r.ObserveReport(time.Millisecond, nil, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.findings.WithLabelValues(string(finding.HighRisk))))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.findings.WithLabelValues(string(finding.Positive))))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.findings.WithLabelValues(string(finding.Concern))))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.reports.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.reports.WithLabelValues(ResultError)))

	// five pre-initialized severity series
	assert.Equal(t, 5, testutil.CollectAndCount(r.findings))
}

func TestHandler(t *testing.T) {
	r := New(true)
	r.ObserveLoad("lines.tsv", 3, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "bureau_source_rows 3"))
	assert.Contains(t, body, "bureau_findings_total")
	assert.Contains(t, body, "go_goroutines")
}
