package serve

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/qcserestipy/pibench/pkg/leibniz"
)

func postJSON(t *testing.T, srv *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	New().Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestComputeEndpoint(t *testing.T) {
	rec := postJSON(t, New(), "/compute", `{"workers":2,"chunk_size":50,"max_batches":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	var res leibniz.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Workers != 2 || res.Iterations != 200 {
		t.Fatalf("got %+v, want 2 workers and 200 iterations", res)
	}
	if res.Pi < 3 || res.Pi > 3.3 {
		t.Fatalf("Pi = %v, implausible for 200 terms", res.Pi)
	}
}

func TestComputeRejectsInvalidConfiguration(t *testing.T) {
	rec := postJSON(t, New(), "/compute", `{"workers":0,"max_batches":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %q", rec.Code, rec.Body.String())
	}
}

func TestComputeRejectsUnknownFields(t *testing.T) {
	rec := postJSON(t, New(), "/compute", `{"workers":1,"max_batches":1,"threads":4}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for schema mismatch", rec.Code)
	}
}

func TestComputeHonorsWorkersCap(t *testing.T) {
	srv := New(4)
	if rec := postJSON(t, srv, "/compute", `{"workers":8,"chunk_size":10,"max_batches":1}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 above the cap", rec.Code)
	}
	if rec := postJSON(t, srv, "/compute", `{"workers":4,"chunk_size":10,"max_batches":1}`); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 at the cap, body %q", rec.Code, rec.Body.String())
	}
}

func TestSweepEndpoint(t *testing.T) {
	rec := postJSON(t, New(), "/sweep", `{"max_workers":3,"chunk_size":20,"max_batches":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	var results []leibniz.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, r := range results {
		if want := int64(i+1) * 20; r.Workers != i+1 || r.Iterations != want {
			t.Fatalf("results[%d] = %+v, want workers %d and %d iterations", i, r, i+1, want)
		}
	}
}
