package api

import (
	"embed"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/harrylevesque/qrscan/internal/files"
	"github.com/harrylevesque/qrscan/internal/utils"
)

//go:embed static/index.html
var staticFS embed.FS

func NewRouter(store files.ScanStore, log *utils.Logger) *mux.Router {
	h := NewHandlers(store, log)
	r := mux.NewRouter()
	r.Use(loggingMiddleware(h.log))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")
	r.HandleFunc("/time", GetTimeHandler).Methods("GET")
	r.HandleFunc("/classify", h.Classify).Methods("POST")
	r.HandleFunc("/scans", h.CreateScan).Methods("POST")
	r.HandleFunc("/scans", h.ListScans).Methods("GET")
	r.HandleFunc("/scans", h.ClearScans).Methods("DELETE")
	r.HandleFunc("/scans/{id}", h.GetScan).Methods("GET")
	r.HandleFunc("/scans/{id}", h.DeleteScan).Methods("DELETE")
	r.HandleFunc("/scans/{id}/view", h.ViewScan).Methods("GET")
	r.HandleFunc("/scans/{id}/screenshot", h.GetScreenshot).Methods("GET")
	r.HandleFunc("/", serveIndex).Methods("GET")
	r.HandleFunc("/index.html", serveIndex).Methods("GET")
	return r
}

func serveIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "index missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(log *utils.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := log.With(zap.String("method", r.Method), zap.String("path", r.URL.Path))
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			reqLog.Debug("http request",
				zap.Int("status", rec.status),
				zap.Duration("elapsed", time.Since(start)))
		})
	}
}
