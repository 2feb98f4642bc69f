package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/user/cloudscope/internal/export"
	"github.com/user/cloudscope/internal/model"
	"github.com/user/cloudscope/internal/provider"
	"github.com/user/cloudscope/internal/storage"
	"github.com/user/cloudscope/internal/util"
)

// Handlers contains HTTP handlers for the collector API.
type Handlers struct {
	db       *storage.DB
	registry *provider.Registry
	apiKey   string
}

// NewHandlers creates new handlers.
func NewHandlers(db *storage.DB, reg *provider.Registry, apiKey string) *Handlers {
	return &Handlers{
		db:       db,
		registry: reg,
		apiKey:   apiKey,
	}
}

// Dashboard serves the main dashboard page.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	hostStorage := storage.NewHostStorage(h.db)
	stats, err := hostStorage.Stats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	page, err := hostStorage.List(model.HostFilter{Page: 1, PerPage: 50})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Stats":     stats,
		"Hosts":     page.Hosts,
		"Providers": h.registry.All(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(w, data); err != nil {
		util.Error("dashboard render failed: %v", err)
	}
}

type resultsRequest struct {
	Results []model.HostRecord `json:"results"`
	APIKey  string             `json:"api_key"`
}

// APIAddResults ingests a batch of scan results. The whole batch is
// rejected when the shared secret mismatches.
func (h *Handlers) APIAddResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, errors.New("method not allowed"), http.StatusMethodNotAllowed)
		return
	}

	var req resultsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	if h.apiKey == "" || req.APIKey != h.apiKey {
		writeError(w, errors.New("invalid API key"), http.StatusUnauthorized)
		return
	}

	// Unknown provider labels never enter the table; the registry is
	// the collector's notion of valid too.
	records := make([]model.HostRecord, 0, len(req.Results))
	for _, rec := range req.Results {
		if rec.IP == "" || !h.registry.Has(rec.Provider) {
			util.Warn("skipping record with ip=%q provider=%q", rec.IP, rec.Provider)
			continue
		}
		records = append(records, rec)
	}

	hostStorage := storage.NewHostStorage(h.db)
	added, err := hostStorage.SaveBatch(records)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{"status": "ok", "added": added})
}

// APIGetHosts returns a filtered, paginated host listing.
func (h *Handlers) APIGetHosts(w http.ResponseWriter, r *http.Request) {
	filter := model.HostFilter{
		Provider:     r.URL.Query().Get("provider"),
		Country:      strings.ToUpper(r.URL.Query().Get("country")),
		SelectedOnly: r.URL.Query().Get("selected") == "true",
		Page:         1,
		PerPage:      100,
	}

	if p := r.URL.Query().Get("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			filter.Page = n
		}
	}
	if pp := r.URL.Query().Get("per_page"); pp != "" {
		if n, err := strconv.Atoi(pp); err == nil && n > 0 && n <= 500 {
			filter.PerPage = n
		}
	}

	hostStorage := storage.NewHostStorage(h.db)
	page, err := hostStorage.List(filter)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, page)
}

// APIGetStats returns aggregate counts.
func (h *Handlers) APIGetStats(w http.ResponseWriter, r *http.Request) {
	hostStorage := storage.NewHostStorage(h.db)
	stats, err := hostStorage.Stats()
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, stats)
}

// APIToggleHost flips the selected flag on one host.
// Path: /api/toggle/{id}
func (h *Handlers) APIToggleHost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, errors.New("method not allowed"), http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/toggle/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, errors.New("invalid host id"), http.StatusBadRequest)
		return
	}

	hostStorage := storage.NewHostStorage(h.db)
	selected, err := hostStorage.Toggle(id)
	if err != nil {
		writeError(w, err, http.StatusNotFound)
		return
	}

	writeJSON(w, map[string]bool{"selected": selected})
}

// APIExport streams the selected hosts as a dated CSV (or XLSX with
// ?format=xlsx) download.
func (h *Handlers) APIExport(w http.ResponseWriter, r *http.Request) {
	hostStorage := storage.NewHostStorage(h.db)
	hosts, err := hostStorage.GetSelected()
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "xlsx" {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename("xlsx", time.Now()))
		if err := export.WriteXLSX(w, h.registry, hosts); err != nil {
			util.Error("xlsx export failed: %v", err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename("csv", time.Now()))
	if err := export.WriteCSV(w, h.registry, hosts); err != nil {
		util.Error("csv export failed: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error, status int) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
