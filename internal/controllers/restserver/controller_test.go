package restserver

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/chrissnell/glacierpost/internal/glacier"
	"github.com/chrissnell/glacierpost/internal/postprocess"
	"github.com/chrissnell/glacierpost/internal/synth"
	"github.com/chrissnell/glacierpost/pkg/config"
)

const rgiID = "RGI60-11.00897"

func newTestServer(t *testing.T, mutate func(*synth.Glacier)) *httptest.Server {
	t.Helper()

	root := t.TempDir()
	g := synth.Default(rgiID)
	if mutate != nil {
		mutate(&g)
	}
	if _, err := synth.Write(root, g); err != nil {
		t.Fatalf("synth.Write: %v", err)
	}

	cfg := &config.ConfigData{
		DataRoot: root,
		Glaciers: []config.GlacierData{{RGIID: rgiID, Suffixes: []string{"_historical"}}},
	}
	cfg.ApplyDefaults()

	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, postprocess.New(cfg),
		config.RESTServerData{}, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	srv := httptest.NewServer(ctrl.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRunResultsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := get(t, srv.URL+"/glaciers/"+rgiID+"/run-results?suffix=_historical")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var rr glacier.RunResults
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		t.Fatal(err)
	}
	if rr.RGIID != rgiID || rr.Suffix != "_historical" {
		t.Errorf("unexpected identity %q %q", rr.RGIID, rr.Suffix)
	}
	if len(rr.Rows) != 12*17 {
		t.Fatalf("expected %d rows, got %d", 12*17, len(rr.Rows))
	}
	if rr.Rows[0].DeltaWaterM3 != 0 {
		t.Errorf("first delta should be zero, got %v", rr.Rows[0].DeltaWaterM3)
	}
	// volume falls by 1.2e6 m3 a month
	if math.Abs(rr.Rows[1].DeltaWaterM3-(-1.2e6*0.9)) > 1e-3 {
		t.Errorf("unexpected delta %v", rr.Rows[1].DeltaWaterM3)
	}
	for i := 1; i < glacier.LengthWindow; i++ {
		if rr.Rows[i].LengthM != rr.Rows[0].LengthM {
			t.Fatalf("row %d not backfilled", i)
		}
	}
}

func TestRunResultsUnknownSuffix(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := get(t, srv.URL+"/glaciers/"+rgiID+"/run-results?suffix=_spinup")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestRunResultsSuffixStatusCodes(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name   string
		suffix string
		want   int
	}{
		{"configured run", "_historical", http.StatusOK},
		{"parent directory escape", "/../../../../../secret", http.StatusBadRequest},
		{"embedded dot-dot", "_.._x", http.StatusBadRequest},
		{"backslash separator", `\..\secret`, http.StatusBadRequest},
		{"unknown run", "_spinup", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, srv.URL+"/glaciers/"+rgiID+"/run-results?suffix="+url.QueryEscape(tt.suffix))
			if resp.StatusCode != tt.want {
				t.Errorf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestClimateStatisticsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := get(t, srv.URL+"/glaciers/"+rgiID+"/climate-statistics?format=msgpack")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/x-msgpack" {
		t.Errorf("unexpected content type %q", ct)
	}

	var cs glacier.ClimateStatistics
	dec := msgpack.NewDecoder(resp.Body)
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&cs); err != nil {
		t.Fatal(err)
	}
	if len(cs.Rows) != 12 || cs.Rows[0].Month != 1 || cs.Rows[11].Month != 12 {
		t.Errorf("unexpected rows %+v", cs.Rows)
	}
}

func TestClimateStatisticsStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*synth.Glacier)
		rgi    string
		want   int
	}{
		{
			name: "short climate record",
			mutate: func(g *synth.Glacier) {
				g.ClimateStartYear = 1990
			},
			rgi:  rgiID,
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "missing statistics",
			mutate: func(g *synth.Glacier) {
				g.FlowlineMinElev = math.NaN()
			},
			rgi:  rgiID,
			want: http.StatusNotFound,
		},
		{
			name: "unknown glacier",
			rgi:  "RGI60-11.00001",
			want: http.StatusNotFound,
		},
		{
			name: "malformed id",
			rgi:  "bogus",
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.mutate)
			resp := get(t, srv.URL+"/glaciers/"+tt.rgi+"/climate-statistics")
			if resp.StatusCode != tt.want {
				t.Errorf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestConvertEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name   string
		query  string
		status int
		liters float64
	}{
		{"defaults", "km3=1", http.StatusOK, 9e11},
		{"custom densities", "km3=2&rho_ice=917&rho_water=1000", http.StatusOK, 1.834e12},
		{"missing km3", "", http.StatusBadRequest, 0},
		{"bad density", "km3=1&rho_ice=dense", http.StatusBadRequest, 0},
		{"zero water density", "km3=1&rho_water=0", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, srv.URL+"/convert/ice-to-freshwater?"+tt.query)
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
			if tt.status != http.StatusOK {
				return
			}
			var c Conversion
			if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
				t.Fatal(err)
			}
			if math.Abs(c.FreshwaterLiters-tt.liters) > 1e-9*tt.liters {
				t.Errorf("got %v liters, want %v", c.FreshwaterLiters, tt.liters)
			}
		})
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	srv := newTestServer(t, nil)

	if resp := get(t, srv.URL+"/healthz"); resp.StatusCode != http.StatusOK {
		t.Errorf("healthz: expected 200, got %d", resp.StatusCode)
	}
	if resp := get(t, srv.URL+"/metrics"); resp.StatusCode != http.StatusOK {
		t.Errorf("metrics: expected 200, got %d", resp.StatusCode)
	}
	if resp := get(t, srv.URL+"/nope"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown route: expected 404, got %d", resp.StatusCode)
	}

	resp := get(t, srv.URL+"/glaciers")
	var list []GlacierSummary
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].RGIID != rgiID {
		t.Errorf("unexpected glacier list %+v", list)
	}
}
