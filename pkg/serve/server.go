// Package serve exposes the time-bounded π computation over HTTP. The
// core accumulator has no network dependency; this is an optional outer
// surface for driving runs and sweeps remotely.
package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	logger "github.com/chi-middleware/logrus-logger"
	log "github.com/sirupsen/logrus"

	"github.com/qcserestipy/pibench/pkg/leibniz"
)

// Server routes compute requests to accumulator runs. A positive
// workersCap rejects requests asking for more workers than the host
// should commit to.
type Server struct {
	Router     *chi.Mux
	workersCap int
}

// New creates a Server. An optional first argument caps the worker
// count accepted per request; zero or omitted means uncapped.
func New(workersCap ...int) *Server {
	limit := 0
	if len(workersCap) > 0 && workersCap[0] > 0 {
		limit = workersCap[0]
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Logger("router", log.StandardLogger()))
	r.Use(middleware.Recoverer)

	s := &Server{Router: r, workersCap: limit}
	s.routes()
	return s
}

// Launch blocks serving s on the given port until an error occurs
// (e.g. port already in use).
func Launch(s *Server, targetPort int) {
	addr := fmt.Sprintf(":%d", targetPort)
	log.Infof("Starting server on %s", addr)
	if err := http.ListenAndServe(addr, s.Router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// CreateRoute wires fn up as a JSON POST handler on path. Invalid
// configuration errors map to 400, anything else to 500.
func CreateRoute[T any, R any](
	r *chi.Mux,
	path string,
	fn func(ctx context.Context, req T) (R, error),
) {
	r.Post(path, func(w http.ResponseWriter, req *http.Request) {
		var in T
		decoder := json.NewDecoder(req.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&in); err != nil {
			http.Error(w, "invalid JSON or schema mismatch: "+err.Error(), http.StatusBadRequest)
			return
		}

		res, err := fn(req.Context(), in)
		if err != nil {
			if errors.Is(err, leibniz.ErrInvalidConfiguration) {
				http.Error(w, "validation error: "+err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "processing error: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			http.Error(w, "encode error: "+err.Error(), http.StatusInternalServerError)
		}
	})
}
