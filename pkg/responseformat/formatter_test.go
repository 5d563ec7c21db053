package responseformat

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

type payload struct {
	Month       int     `json:"month"`
	TempCelsius float64 `json:"temp_celcius"`
}

func TestWriteResponseJSON(t *testing.T) {
	f := NewFormatter()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()

	if err := f.WriteResponse(rec, req, http.StatusOK, payload{Month: 3, TempCelsius: -1.5}, map[string]string{"Cache-Control": "max-age=60"}); err != nil {
		t.Fatal(err)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	if rec.Header().Get("Cache-Control") != "max-age=60" {
		t.Error("extra header not set")
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["temp_celcius"] != -1.5 {
		t.Errorf("unexpected body %v", got)
	}
}

func TestWriteResponseMsgPack(t *testing.T) {
	f := NewFormatter()
	req := httptest.NewRequest(http.MethodGet, "/x?format=msgpack", nil)
	rec := httptest.NewRecorder()

	if err := f.WriteResponse(rec, req, http.StatusOK, payload{Month: 7, TempCelsius: 6.25}, nil); err != nil {
		t.Fatal(err)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "application/x-msgpack" {
		t.Errorf("unexpected content type %q", ct)
	}
	var got map[string]any
	if err := msgpack.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if _, ok := got["temp_celcius"]; !ok {
		t.Errorf("json tag names not used: %v", got)
	}
}

func TestWriteError(t *testing.T) {
	f := NewFormatter()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()

	f.WriteError(rec, req, http.StatusNotFound, "not found", "no such glacier")

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "not found" || body.Message != "no such glacier" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestWriteResponseUnencodable(t *testing.T) {
	f := NewFormatter()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()

	err := f.WriteResponse(rec, req, http.StatusOK, payload{Month: 1, TempCelsius: math.NaN()}, nil)
	if err == nil {
		t.Fatal("expected an encoding error for NaN")
	}

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %v (%q)", err, rec.Body.String())
	}
	if body.Error != "encoding failed" {
		t.Errorf("unexpected body %+v", body)
	}
}
