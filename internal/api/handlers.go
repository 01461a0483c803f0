package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/harrylevesque/qrscan/internal/files"
	"github.com/harrylevesque/qrscan/internal/models"
	"github.com/harrylevesque/qrscan/internal/payload"
	"github.com/harrylevesque/qrscan/internal/render"
	"github.com/harrylevesque/qrscan/internal/utils"
)

// maxBodyBytes bounds request bodies, screenshots included.
const maxBodyBytes = 10 << 20

// Handlers serves the scan API backed by a ScanStore.
type Handlers struct {
	store files.ScanStore
	log   *utils.Logger
}

func NewHandlers(store files.ScanStore, log *utils.Logger) *Handlers {
	if log == nil {
		log = utils.NewNopLogger()
	}
	return &Handlers{store: store, log: log}
}

type scanRequest struct {
	Text string `json:"text"`
	// Screenshot is base64 PNG data, optionally as a data URL.
	Screenshot string `json:"screenshot,omitempty"`
	Source     string `json:"source,omitempty"`
}

type classifyResponse struct {
	Payload  models.Payload  `json:"payload"`
	Fragment render.Fragment `json:"fragment"`
}

// scanView is a stored scan as returned to clients. Screenshot bytes are
// served separately.
type scanView struct {
	models.Scan
	HasScreenshot bool            `json:"has_screenshot"`
	Fragment      render.Fragment `json:"fragment"`
}

func newScanView(s models.Scan) scanView {
	has := len(s.Screenshot) > 0
	s.Screenshot = nil
	return scanView{Scan: s, HasScreenshot: has, Fragment: render.Format(s.Payload)}
}

// GetTimeHandler returns the current server time in RFC3339 format
func GetTimeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"time": time.Now().Format(time.RFC3339)})
}

// Classify classifies text without storing it.
func (h *Handlers) Classify(w http.ResponseWriter, r *http.Request) {
	req, err := decodeScanRequest(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	p := payload.Classify(req.Text)
	writeJSON(w, http.StatusOK, classifyResponse{Payload: p, Fragment: render.Format(p)})
}

// CreateScan classifies and stores one decoded payload.
func (h *Handlers) CreateScan(w http.ResponseWriter, r *http.Request) {
	req, err := decodeScanRequest(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	shot, err := decodeScreenshot(req.Screenshot)
	if err != nil {
		h.writeError(w, utils.Wrap(http.StatusBadRequest, "invalid screenshot", err))
		return
	}
	source := req.Source
	if source == "" {
		source = "api"
	}
	scan := models.NewScan(payload.Classify(req.Text), source, shot)
	if err := h.store.Save(r.Context(), scan); err != nil {
		if errors.Is(err, files.ErrDuplicate) {
			h.writeError(w, utils.Wrap(http.StatusConflict, "duplicate scan", err))
			return
		}
		h.writeError(w, err)
		return
	}
	h.log.Info("scan stored", zap.String("id", scan.ID), zap.String("kind", string(scan.Kind)), zap.String("source", source))
	writeJSON(w, http.StatusCreated, newScanView(*scan))
}

// ListScans returns history newest first, filtered by ?kind= and ?limit=.
func (h *Handlers) ListScans(w http.ResponseWriter, r *http.Request) {
	var opts files.ListOptions
	q := r.URL.Query()
	if k := q.Get("kind"); k != "" {
		kind, ok := models.ParseKind(strings.ToLower(k))
		if !ok {
			h.writeError(w, utils.New(http.StatusBadRequest, "unknown kind "+strconv.Quote(k)))
			return
		}
		opts.Kind = kind
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			h.writeError(w, utils.New(http.StatusBadRequest, "limit must be a non-negative integer"))
			return
		}
		opts.Limit = n
	}
	scans, err := h.store.List(r.Context(), opts)
	if err != nil {
		h.writeError(w, err)
		return
	}
	views := make([]scanView, 0, len(scans))
	for _, s := range scans {
		views = append(views, newScanView(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"scans": views, "count": len(views)})
}

func (h *Handlers) GetScan(w http.ResponseWriter, r *http.Request) {
	scan, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newScanView(*scan))
}

// ViewScan renders a stored scan as an HTML fragment.
func (h *Handlers) ViewScan(w http.ResponseWriter, r *http.Request) {
	scan, ok := h.lookup(w, r)
	if !ok {
		return
	}
	html, err := render.Format(scan.Payload).HTML()
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

func (h *Handlers) GetScreenshot(w http.ResponseWriter, r *http.Request) {
	scan, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if len(scan.Screenshot) == 0 {
		h.writeError(w, utils.New(http.StatusNotFound, "scan has no screenshot"))
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(scan.Screenshot))
	w.Header().Set("Content-Disposition", `attachment; filename="qr-screenshot-`+strconv.FormatInt(scan.CreatedAt.UnixMilli(), 10)+`.png"`)
	w.WriteHeader(http.StatusOK)
	w.Write(scan.Screenshot)
}

func (h *Handlers) DeleteScan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.writeError(w, notFoundAware(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ClearScans(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.log.Info("scan history cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) lookup(w http.ResponseWriter, r *http.Request) (*models.Scan, bool) {
	id := mux.Vars(r)["id"]
	scan, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, notFoundAware(err))
		return nil, false
	}
	return scan, true
}

func notFoundAware(err error) error {
	if errors.Is(err, files.ErrNotFound) {
		return utils.Wrap(http.StatusNotFound, "scan not found", err)
	}
	return err
}

func decodeScanRequest(w http.ResponseWriter, r *http.Request) (*scanRequest, error) {
	var req scanRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		return nil, utils.Wrap(http.StatusBadRequest, "invalid request body", err)
	}
	return &req, nil
}

// decodeScreenshot accepts raw base64 or a data URL such as
// "data:image/png;base64,....".
func decodeScreenshot(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "data:") {
		_, s, _ = strings.Cut(s, ",")
	}
	return base64.StdEncoding.DecodeString(s)
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	code, msg := utils.StatusOf(err)
	if code >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
