package restserver

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/chrissnell/glacierpost/internal/gdir"
	"github.com/chrissnell/glacierpost/internal/glacier"
	"github.com/chrissnell/glacierpost/internal/log"
	"github.com/chrissnell/glacierpost/pkg/responseformat"
	"github.com/chrissnell/glacierpost/pkg/units"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// GlacierSummary describes a configured glacier
type GlacierSummary struct {
	RGIID    string   `json:"rgi_id"`
	Suffixes []string `json:"suffixes"`
}

// Conversion is the response of the ice-to-freshwater endpoint
type Conversion struct {
	IceKm3           float64 `json:"ice_km3"`
	RhoIce           float64 `json:"rho_ice"`
	RhoWater         float64 `json:"rho_water"`
	FreshwaterLiters float64 `json:"freshwater_liters"`
}

// Healthz reports liveness
func (h *Handlers) Healthz(w http.ResponseWriter, req *http.Request) {
	h.write(w, req, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound answers unknown routes
func (h *Handlers) NotFound(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteError(w, req, http.StatusNotFound, "not found", req.URL.Path)
}

// ListGlaciers returns the configured glaciers
func (h *Handlers) ListGlaciers(w http.ResponseWriter, req *http.Request) {
	glaciers := h.controller.reader.Glaciers()
	out := make([]GlacierSummary, 0, len(glaciers))
	for _, g := range glaciers {
		out = append(out, GlacierSummary{RGIID: g.RGIID, Suffixes: g.Suffixes})
	}
	h.write(w, req, http.StatusOK, out)
}

// GetRunResults returns the run-results table of one glacier run
func (h *Handlers) GetRunResults(w http.ResponseWriter, req *http.Request) {
	rgiID := mux.Vars(req)["rgi"]
	suffix := req.URL.Query().Get("suffix")

	rr, err := h.controller.reader.RunResults(rgiID, suffix)
	if err != nil {
		h.writeReadError(w, req, err)
		return
	}
	h.write(w, req, http.StatusOK, rr)
}

// GetClimateStatistics returns the terminus climatology of one glacier
func (h *Handlers) GetClimateStatistics(w http.ResponseWriter, req *http.Request) {
	rgiID := mux.Vars(req)["rgi"]

	cs, err := h.controller.reader.ClimateStatistics(rgiID)
	if err != nil {
		h.writeReadError(w, req, err)
		return
	}
	h.write(w, req, http.StatusOK, cs)
}

// ConvertIceToFreshwater converts km3 of ice to liters of freshwater
func (h *Handlers) ConvertIceToFreshwater(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	km3, err := parseFloatParam(q.Get("km3"), math.NaN())
	if err != nil || math.IsNaN(km3) {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid km3", "km3 must be a number")
		return
	}
	rhoIce, err := parseFloatParam(q.Get("rho_ice"), units.DefaultIceDensity)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid rho_ice", err.Error())
		return
	}
	rhoWater, err := parseFloatParam(q.Get("rho_water"), units.DefaultWaterDensity)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid rho_water", err.Error())
		return
	}

	liters := units.IceToFreshwater(km3, units.WithIceDensity(rhoIce), units.WithWaterDensity(rhoWater))
	if math.IsInf(liters, 0) || math.IsNaN(liters) {
		// JSON cannot carry non-finite numbers
		h.formatter.WriteError(w, req, http.StatusBadRequest, "non-finite result", "check the densities")
		return
	}

	h.write(w, req, http.StatusOK, Conversion{
		IceKm3:           km3,
		RhoIce:           rhoIce,
		RhoWater:         rhoWater,
		FreshwaterLiters: liters,
	})
}

func parseFloatParam(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, status int, data any) {
	if err := h.formatter.WriteResponse(w, req, status, data, nil); err != nil {
		log.Errorf("error encoding response for %s: %v", req.URL.Path, err)
	}
}

// writeReadError maps reader failures to HTTP status codes
func (h *Handlers) writeReadError(w http.ResponseWriter, req *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Errorf("error reading %s: %v", req.URL.Path, err)
	}
	h.formatter.WriteError(w, req, status, http.StatusText(status), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, gdir.ErrInvalidRGIID), errors.Is(err, gdir.ErrUnknownFile),
		errors.Is(err, gdir.ErrInvalidSuffix):
		return http.StatusBadRequest
	case errors.Is(err, gdir.ErrNotFound), errors.Is(err, glacier.ErrStatisticsNotFound):
		return http.StatusNotFound
	case errors.Is(err, glacier.ErrSchema), errors.Is(err, glacier.ErrCoverage):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
