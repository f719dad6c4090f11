package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xtding233/loot-backend/internal/logger"
	"github.com/xtding233/loot-backend/internal/loot"
	"github.com/xtding233/loot-backend/internal/service"
	"github.com/xtding233/loot-backend/internal/table"
)

type handlers struct {
	svc *service.Service
}

type errorResp struct {
	Err string `json:"err"`
}

type namesResp struct {
	Names []string `json:"names"`
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) listCatalogs(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.Catalogs(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, namesResp{Names: names})
}

func (h *handlers) listTables(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.Tables(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, namesResp{Names: names})
}

func (h *handlers) tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.svc.Tree(r.Context(), chi.URLParam(r, "catalog"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(tree))
}

// GET /catalogs/{catalog}/roll?path=&depth=&luck=&seed=
func (h *handlers) roll(w http.ResponseWriter, r *http.Request) {
	req := service.RollRequest{
		Catalog: chi.URLParam(r, "catalog"),
		Path:    r.URL.Query().Get("path"),
	}
	var err error
	if req.Depth, err = parseDepth(r, "depth"); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Luck, err = parseFloat(r, "luck"); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Seed, err = parseSeed(r); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Roll(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// POST /catalogs/{catalog}/loot {"drops":[...],"seed":n}
func (h *handlers) lootCatalog(w http.ResponseWriter, r *http.Request) {
	var req service.LootRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	req.Catalog = chi.URLParam(r, "catalog")

	res, err := h.svc.Loot(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// GET /tables/{table}/loot?seed=&luck=&depth=&min=&max=&modify=
func (h *handlers) lootTable(w http.ResponseWriter, r *http.Request) {
	req := service.TableRequest{Table: chi.URLParam(r, "table")}
	var err error
	if req.Overrides, err = parseOverrides(r); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Seed, err = parseSeed(r); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.LootTable(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// GET /tables/{table}/simulate?trials=&seed=
func (h *handlers) simulate(w http.ResponseWriter, r *http.Request) {
	req := service.SimulateRequest{Table: chi.URLParam(r, "table")}
	trials, err := parseInt(r, "trials")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if trials != nil {
		req.Trials = *trials
	}
	if req.Seed, err = parseSeed(r); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Simulate(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *handlers) reload(w http.ResponseWriter, r *http.Request) {
	h.svc.Reload(r.Context(), "admin")
	respondJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func parseOverrides(r *http.Request) (table.Overrides, error) {
	var (
		o   table.Overrides
		err error
	)
	if o.Luck, err = parseFloat(r, "luck"); err != nil {
		return o, err
	}
	if o.Depth, err = parseDepth(r, "depth"); err != nil {
		return o, err
	}
	if o.Min, err = parseInt(r, "min"); err != nil {
		return o, err
	}
	if o.Max, err = parseInt(r, "max"); err != nil {
		return o, err
	}
	if s := r.URL.Query().Get("modify"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return o, errors.New("invalid modify")
		}
		o.Modify = &v
	}
	return o, nil
}

func parseFloat(r *http.Request, key string) (*float64, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	return &v, nil
}

func parseInt(r *http.Request, key string) (*int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	return &v, nil
}

// parseDepth is parseInt that also accepts "max".
func parseDepth(r *http.Request, key string) (*int, error) {
	if r.URL.Query().Get(key) == "max" {
		d := loot.MaxDepth
		return &d, nil
	}
	return parseInt(r, key)
}

func parseSeed(r *http.Request) (*uint64, error) {
	s := r.URL.Query().Get("seed")
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, errors.New("invalid seed")
	}
	return &v, nil
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrCatalogNotFound),
		errors.Is(err, service.ErrTableNotFound),
		errors.Is(err, loot.ErrPathNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, loot.ErrInvalidDrop),
		errors.Is(err, loot.ErrNoTrials):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", "error", err)
		msg = "internal error"
	}
	respondError(w, status, msg)
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResp{Err: message})
}
