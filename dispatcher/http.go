package dispatcher

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aswathylr-builds/order-confirmation/models"
	"github.com/aswathylr-builds/order-confirmation/validation"
)

const (
	maxBodyBytes = 1 << 20

	msgInvalidJSON      = "Invalid JSON in request body"
	msgMethodNotAllowed = "Method not allowed"
	msgInternal         = "Internal server error"
)

// CORS headers sent on every response
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
}

// Handler serves the dispatcher on every path below where it is mounted
func (d *Dispatcher) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(cors)
	r.Use(d.instrument)
	r.Use(d.recoverJSON)

	r.Options("/*", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/*", d.handleConfirmation)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, models.ErrorResponse{Error: msgMethodNotAllowed})
	})
	return r
}

func (d *Dispatcher) handleConfirmation(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil || !json.Valid(body) {
		d.logger.WarnContext(r.Context(), "failed to parse request body", "error", err)
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: msgInvalidJSON})
		return
	}

	payload, err := decodeOrder(body)
	if err != nil {
		d.logger.WarnContext(r.Context(), "failed to decode request body", "error", err)
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: msgInvalidJSON})
		return
	}

	if res := validation.Validate(payload); !res.Valid {
		d.reject(w, r, res.Err, body)
		return
	}

	resp := d.Dispatch(r.Context(), payload)
	writeJSON(w, http.StatusOK, resp)
}

func (d *Dispatcher) reject(w http.ResponseWriter, r *http.Request, err error, body []byte) {
	d.logger.WarnContext(r.Context(), "rejected order payload", "error", err)
	writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
		Error:        err.Error(),
		ReceivedData: json.RawMessage(body),
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range corsHeaders {
			w.Header().Set(k, v)
		}
		next.ServeHTTP(w, r)
	})
}

func (d *Dispatcher) recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			msg := fmt.Sprint(rec)
			if err, ok := rec.(error); ok {
				msg = err.Error()
			}
			if msg == "" {
				msg = msgInternal
			}
			d.logger.ErrorContext(r.Context(), "error processing request", "error", msg)
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: msg})
		}()
		next.ServeHTTP(w, r)
	})
}

func (d *Dispatcher) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d.metrics.Requests.WithLabelValues("dispatch", fmt.Sprint(status)).Inc()
		d.metrics.LatencyMS.WithLabelValues("dispatch").Observe(float64(time.Since(start).Milliseconds()))
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
