package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/drakos74/free-descent/internal/descent"
	"github.com/drakos74/free-descent/internal/metrics"
	"github.com/drakos74/free-descent/internal/report"
	"github.com/drakos74/free-descent/internal/storage"
	json_storage "github.com/drakos74/free-descent/internal/storage/file/json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarios() []descent.Scenario {
	return []descent.Scenario{
		{
			Name:   "regularization",
			Sample: descent.Sample{Input: 2, Target: 0.8},
			Phases: []descent.Phase{
				{Name: "breaking", Config: descent.NewConfig(1), Iterations: 50},
				{Name: "regularization", Config: descent.NewConfig(1).WithDamping(0.1), Iterations: 50},
			},
		},
		{
			Name:   "broken",
			Sample: descent.Sample{Input: 2, Target: 0.8},
			Phases: []descent.Phase{
				{Name: "negative", Config: descent.NewConfig(1), Iterations: -1},
			},
		},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *json_storage.LocalStorage, *metrics.Metrics) {
	store := json_storage.NewLocalStorage()
	observer := metrics.NewMetrics()
	registry := prometheus.NewRegistry()
	require.NoError(t, observer.Register(registry))

	d := NewDescent(scenarios(), store, observer).Debug()
	srv := NewServer("test", 0).
		Debug().
		Add(d.Routes()...).
		Mount("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store, observer
}

func post(t *testing.T, url string, body string) (int, []byte) {
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b
}

func get(t *testing.T, url string) (int, []byte) {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b
}

func TestServer_Live(t *testing.T) {
	ts, _, _ := newTestServer(t)

	code, _ := get(t, ts.URL+"/data")
	assert.Equal(t, http.StatusOK, code)

	code, _ = post(t, ts.URL+"/data", "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestServer_Run(t *testing.T) {
	ts, store, observer := newTestServer(t)

	type test struct {
		body       string
		code       int
		records    int
		regime     report.Regime
		iterations float64
	}

	tests := map[string]test{
		"stable": {
			body:    `{"sample":{"input":0.5,"target":0.8},"weight":0.5,"iterations":20}`,
			code:    http.StatusOK,
			records: 20,
			regime:  report.Converging,
		},
		"diverging": {
			body:    `{"sample":{"input":2,"target":0.8},"weight":0,"config":{"learning_rate":1},"iterations":50}`,
			code:    http.StatusOK,
			records: 50,
			regime:  report.Diverging,
		},
		"overflow": {
			body:    `{"sample":{"input":2,"target":0.8},"weight":0,"config":{"learning_rate":3},"iterations":1000}`,
			code:    http.StatusOK,
			records: 1000,
			regime:  report.Diverging,
		},
		"hot-cold": {
			body:    `{"sample":{"input":0.5,"target":0.8},"weight":0.5,"config":{"method":"finite-difference","step":0.001},"iterations":1101}`,
			code:    http.StatusOK,
			records: 1101,
			regime:  report.Converging,
		},
		"negative-iterations": {
			body: `{"sample":{"input":0.5,"target":0.8},"iterations":-1}`,
			code: http.StatusBadRequest,
		},
		"bad-damping": {
			body: `{"sample":{"input":0.5,"target":0.8},"config":{"damping":2},"iterations":10}`,
			code: http.StatusBadRequest,
		},
		"bad-payload": {
			body: `{"sample":`,
			code: http.StatusBadRequest,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			code, b := post(t, ts.URL+"/api/run", tt.body)
			require.Equal(t, tt.code, code, string(b))
			if tt.code != http.StatusOK {
				return
			}
			var r report.Report
			require.NoError(t, json.Unmarshal(b, &r))
			assert.Equal(t, tt.records, len(r.Records))
			assert.Equal(t, tt.regime, r.Summary.Regime)

			var stored report.Report
			require.NoError(t, store.Load(storage.Key{ID: r.ID}, &stored))
			assert.Equal(t, r.ID, stored.ID)
		})
	}

	assert.Equal(t, 4, store.Keys())
	assert.Equal(t, 4.0, runs(observer))
}

func runs(m *metrics.Metrics) float64 {
	total := 0.0
	for _, method := range []descent.Method{descent.AnalyticGradient, descent.FiniteDifference} {
		for _, regime := range []report.Regime{report.Converging, report.Diverging, report.Flat} {
			total += testutil.ToFloat64(m.Runs(string(method), regime))
		}
	}
	return total
}

func TestServer_Scenario(t *testing.T) {
	ts, store, _ := newTestServer(t)

	code, b := post(t, ts.URL+"/api/scenario?name=regularization", "")
	require.Equal(t, http.StatusOK, code, string(b))

	var reports []report.Report
	require.NoError(t, json.Unmarshal(b, &reports))
	require.Equal(t, 2, len(reports))
	assert.Equal(t, "breaking", reports[0].Phase)
	assert.Equal(t, report.Diverging, reports[0].Summary.Regime)
	assert.Equal(t, report.Converging, reports[1].Summary.Regime)
	assert.Equal(t, 2, store.Keys())

	code, _ = post(t, ts.URL+"/api/scenario?name=unknown", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = post(t, ts.URL+"/api/scenario?name=broken", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestServer_Scenarios(t *testing.T) {
	ts, _, _ := newTestServer(t)

	code, b := get(t, ts.URL+"/api/scenarios")
	require.Equal(t, http.StatusOK, code)

	var names []string
	require.NoError(t, json.Unmarshal(b, &names))
	assert.Equal(t, []string{"broken", "regularization"}, names)
}

func TestServer_Metrics(t *testing.T) {
	ts, _, _ := newTestServer(t)

	code, _ := post(t, ts.URL+"/api/run", `{"sample":{"input":0.5,"target":0.8},"weight":0.5,"iterations":20}`)
	require.Equal(t, http.StatusOK, code)

	code, b := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, strings.Contains(string(b), `descent_runs{method="analytic-gradient",regime="converging"} 1`))
}
