package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"zeladoria/internal/intake"
	"zeladoria/internal/store"
	"zeladoria/internal/triage"
)

const maxBodyBytes = 1 << 20

// Service is the request intake surface the handlers call.
type Service interface {
	Create(ctx context.Context, in intake.CreateInput) (store.Request, error)
	Get(ctx context.Context, id string) (store.Request, error)
	List(ctx context.Context, f store.ListFilter) (intake.Page, error)
	UpdateStatus(ctx context.Context, id string, status store.Status) (store.Request, error)
}

type Handler struct {
	svc      Service
	throttle *Throttle
	logger   *zap.Logger
}

func NewHandler(svc Service, throttle *Throttle, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, throttle: throttle, logger: logger}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("POST /requests", h.throttle.Middleware(http.HandlerFunc(h.handleCreate)))
	mux.HandleFunc("GET /requests", h.handleList)
	mux.HandleFunc("GET /requests/{id}", h.handleGet)
	mux.HandleFunc("PATCH /requests/{id}/status", h.handleUpdateStatus)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	in, err := intake.DecodeCreate(body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	saved, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter, err := intake.ParseListQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.svc.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	req, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	status, err := intake.DecodeStatus(body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.svc.UpdateStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *intake.ValidationError
	var cerr *triage.ClassificationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": verr.Message,
			"errors": map[string]any{
				"formErrors":  verr.FormErrors,
				"fieldErrors": verr.FieldErrors,
			},
		})
	case errors.As(err, &cerr):
		h.logger.Warn("classification failed",
			zap.String("path", r.URL.Path),
			zap.String("provider", cerr.Provider),
			zap.Int("status", cerr.HTTPStatus),
			zap.String("detail", cerr.Detail))
		writeJSON(w, cerr.HTTPStatus, cerr)
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "request not found"})
	default:
		h.logger.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "internal server error"})
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{"message": "request body too large"})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{"message": "could not read request body"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
