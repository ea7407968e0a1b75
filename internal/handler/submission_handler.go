package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/auth"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/service"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/stream"
)

type SubmissionHandler struct {
	subs    *service.SubmissionService // nil when persistence is unconfigured
	backups *service.BackupService
	authz   *service.Authorizer
	events  *stream.Broadcaster
	log     *zap.Logger
}

func NewSubmissionHandler(
	subs *service.SubmissionService,
	backups *service.BackupService,
	authz *service.Authorizer,
	events *stream.Broadcaster,
	log *zap.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{subs: subs, backups: backups, authz: authz, events: events, log: log}
}

func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.subs == nil {
		writeUnavailable(w)
		return
	}
	var req service.SubmissionInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	sub, err := h.subs.Create(r.Context(), &req, auth.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submission": sub})
}

func (h *SubmissionHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	if h.subs == nil {
		writeUnavailable(w)
		return
	}
	subs, err := h.subs.ListAll(r.Context(), auth.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

func (h *SubmissionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	if h.subs == nil {
		writeUnavailable(w)
		return
	}
	subs, err := h.subs.ListMine(r.Context(), auth.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

func (h *SubmissionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if h.subs == nil {
		writeUnavailable(w)
		return
	}
	id := chi.URLParam(r, "id")
	var req struct {
		Status string `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	sub, err := h.subs.UpdateStatus(r.Context(), id, req.Status, auth.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submission": sub})
}

func (h *SubmissionHandler) Backup(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		writeUnavailable(w)
		return
	}
	backup, err := h.backups.Snapshot(r.Context(), auth.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"backup": backup})
}

// Stream pushes submission events to the admin dashboard over SSE.
// Advisory only: when the connection drops the dashboard falls back to
// manual reload.
func (h *SubmissionHandler) Stream(w http.ResponseWriter, r *http.Request) {
	caller := auth.GetIdentity(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !h.authz.IsAdmin(r.Context(), caller) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	events, cancel := h.events.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
			flusher.Flush()
		}
	}
}
