package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brandonlukas/lumap/internal/catalog"
	"github.com/brandonlukas/lumap/internal/data/bundle"
	"github.com/brandonlukas/lumap/internal/render"
	"github.com/brandonlukas/lumap/internal/service"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	ds := &bundle.Dataset{
		Positions: []float32{
			0, 0, 0,
			1, 0, 0,
			0, 1, 0,
			1, 1, 0,
		},
		BaseColors: []uint8{255, 0, 0, 0, 255, 0, 0, 0, 255, 255, 255, 0},
		Catalog: catalog.New("type", []catalog.AttributeMeta{
			{Name: "type", Categories: []string{"A", "B"}},
			{Name: "batch", Categories: []string{"X"}},
		}),
		Codes: map[string][]uint8{
			"type":  {0, 1, 0, 1},
			"batch": {0, 0, 0, 0},
		},
		VariantColors: map[string][]uint8{
			"type":  {255, 0, 0, 0, 255, 0, 0, 0, 255, 255, 255, 0},
			"batch": {128, 128, 128, 128, 128, 128, 128, 128, 128, 128, 128, 128},
		},
		NumPoints: 4,
	}

	renderer := render.NewSnapshotRenderer(render.Config{
		Width:      64,
		Height:     64,
		PointSize:  2,
		Background: "#0b0e14",
	})

	svc, err := service.NewViewerService(service.ViewerServiceConfig{
		Dataset:        ds,
		Renderer:       renderer,
		SnapshotWidth:  64,
		SnapshotHeight: 64,
	})
	if err != nil {
		t.Fatalf("failed to build viewer service: %v", err)
	}

	return NewRouter(RouterConfig{
		Service:     svc,
		CORSOrigins: []string{"http://localhost:3000"},
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeFloat32LE(t *testing.T, data []byte) []float32 {
	t.Helper()
	if len(data)%4 != 0 {
		t.Fatalf("buffer length %d is not a multiple of 4", len(data))
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		off := i * 4
		bits := uint32(data[off]) | uint32(data[off+1])<<8 | uint32(data[off+2])<<16 | uint32(data[off+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	return out
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAttributesEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/attributes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Default    string `json:"default"`
		Attributes []struct {
			Name          string   `json:"name"`
			Categories    []string `json:"categories"`
			Highlightable bool     `json:"highlightable"`
		} `json:"attributes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if payload.Default != "type" {
		t.Fatalf("expected default %q, got %q", "type", payload.Default)
	}
	if len(payload.Attributes) != 2 || payload.Attributes[0].Name != "type" {
		t.Fatalf("unexpected attributes: %+v", payload.Attributes)
	}
	if !payload.Attributes[0].Highlightable {
		t.Fatal("attribute with codes must be highlightable")
	}
}

func TestHighlightFlow(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/view/highlight", `{"category": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/buffers/brightness", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	brightness := decodeFloat32LE(t, rec.Body.Bytes())
	want := []float32{0.15, 1, 0.15, 1}
	for i, b := range brightness {
		if b != want[i] {
			t.Fatalf("brightness[%d] = %v, want %v", i, b, want[i])
		}
	}

	// Clearing via null restores full brightness.
	rec = doJSON(t, router, http.MethodPost, "/api/view/highlight", `{"category": null}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/buffers/brightness", "")
	for i, b := range decodeFloat32LE(t, rec.Body.Bytes()) {
		if b != 1 {
			t.Fatalf("brightness[%d] = %v after clear, want 1.0", i, b)
		}
	}
}

func TestAttributeSwitchAndNoneCoercion(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/view/attribute", `{"attribute": "batch"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var state struct {
		Attribute *string `json:"attribute"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if state.Attribute == nil || *state.Attribute != "batch" {
		t.Fatalf("unexpected state attribute: %v", state.Attribute)
	}

	// The UI's "none" sentinel coerces to base-color mode.
	rec = doJSON(t, router, http.MethodPost, "/api/view/attribute", `{"attribute": "none"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if state.Attribute != nil {
		t.Fatalf("expected null attribute, got %q", *state.Attribute)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/buffers/colors", "")
	for i, v := range decodeFloat32LE(t, rec.Body.Bytes()) {
		if v != 1 {
			t.Fatalf("colors[%d] = %v in base mode, want white", i, v)
		}
	}
}

func TestUnknownAttributeReturnsBadRequest(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/view/attribute", `{"attribute": "ghost"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestInvalidJSONBody(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/view/attribute", `{`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestResetEndpoint(t *testing.T) {
	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/api/view/attribute", `{"attribute": "none"}`)
	rec := doJSON(t, router, http.MethodPost, "/api/view/reset", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var state struct {
		Attribute *string `json:"attribute"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if state.Attribute == nil || *state.Attribute != "type" {
		t.Fatalf("reset must restore the default attribute, got %v", state.Attribute)
	}
}

func TestSnapshotEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/snapshot.png?w=32&h=32", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected non-empty PNG body")
	}
}
