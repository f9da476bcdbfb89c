package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/activities/internal/gateway"
	"github.com/julianstephens/activities/internal/models"
	"github.com/julianstephens/activities/internal/storage"
)

const maxBodyBytes = 1 << 20

// Handler serves the activity routes over a storage.Provider.
type Handler struct {
	store storage.Provider
	log   *log.Logger
}

func NewHandler(p storage.Provider, l *log.Logger) *Handler {
	return &Handler{store: p, log: l}
}

// RegisterRoutes wires endpoints under prefix (e.g. "/api") to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux, prefix string, m *Metrics) {
	route := func(pattern, method, path string, fn http.HandlerFunc) {
		mux.Handle(method+" "+prefix+path, m.Instrument(pattern, fn))
	}
	route("list", http.MethodGet, "/activities", h.listActivities)
	route("create", http.MethodPost, "/activities", h.createActivity)
	route("details", http.MethodGet, "/activities/{id}", h.getActivity)
	route("update", http.MethodPut, "/activities/{id}", h.updateActivity)
	route("delete", http.MethodDelete, "/activities/{id}", h.deleteActivity)
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.store.ListActivities(r.Context())
	if err != nil {
		h.serverError(w, "list", err)
		return
	}
	out := make([]gateway.WireActivity, 0, len(activities))
	for _, a := range activities {
		out = append(out, gateway.ToWire(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request) {
	a, err := h.store.GetActivity(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "activity not found")
		return
	}
	if err != nil {
		h.serverError(w, "details", err)
		return
	}
	writeJSON(w, http.StatusOK, gateway.ToWire(a))
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	a, ok := decodeActivity(w, r)
	if !ok {
		return
	}
	if err := a.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	err := h.store.AddActivity(r.Context(), a)
	if errors.Is(err, storage.ErrConflict) {
		writeError(w, http.StatusConflict, "conflict", "activity already exists")
		return
	}
	if err != nil {
		h.serverError(w, "create", err)
		return
	}
	h.log.Info("activity created", "id", a.ID)
	writeJSON(w, http.StatusCreated, gateway.ToWire(a))
}

func (h *Handler) updateActivity(w http.ResponseWriter, r *http.Request) {
	a, ok := decodeActivity(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if a.ID == "" {
		a.ID = id
	}
	if a.ID != id {
		writeError(w, http.StatusBadRequest, "validation_failed", "body id does not match path")
		return
	}
	if err := a.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	err := h.store.UpdateActivity(r.Context(), a)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "activity not found")
		return
	}
	if err != nil {
		h.serverError(w, "update", err)
		return
	}
	writeJSON(w, http.StatusOK, gateway.ToWire(a))
}

func (h *Handler) deleteActivity(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteActivity(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "activity not found")
		return
	}
	if err != nil {
		h.serverError(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeActivity(w http.ResponseWriter, r *http.Request) (models.Activity, bool) {
	var wire gateway.WireActivity
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return models.Activity{}, false
	}
	a, err := gateway.FromWire(wire)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return models.Activity{}, false
	}
	return a, true
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.log.Error("storage failure", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "server_error", "internal error")
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
