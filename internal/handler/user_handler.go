package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/auth"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/service"
)

type UserHandler struct {
	profiles *service.ProfileService // nil when persistence is unconfigured
	log      *zap.Logger
}

func NewUserHandler(profiles *service.ProfileService, log *zap.Logger) *UserHandler {
	return &UserHandler{profiles: profiles, log: log}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	if h.profiles == nil {
		writeUnavailable(w)
		return
	}
	profile, err := h.profiles.Me(r.Context(), auth.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	if h.profiles == nil {
		writeUnavailable(w)
		return
	}
	var req service.ProfileUpdateInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	profile, err := h.profiles.UpdateMe(r.Context(), auth.GetIdentity(r.Context()), &req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
}

func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	if h.profiles == nil {
		writeUnavailable(w)
		return
	}
	var req service.RoleUpdateInput
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	profile, err := h.profiles.UpdateRole(r.Context(), auth.GetIdentity(r.Context()), &req)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
}

func (h *UserHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if h.profiles == nil {
		writeUnavailable(w)
		return
	}
	profile, err := h.profiles.Sync(r.Context(), auth.GetIdentity(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
}
