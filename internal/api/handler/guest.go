package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/snapfest/snapfest/internal/api/middleware"
	"github.com/snapfest/snapfest/internal/api/request"
	"github.com/snapfest/snapfest/internal/api/response"
	"github.com/snapfest/snapfest/internal/model"
	"github.com/snapfest/snapfest/internal/services/directory"
	"github.com/snapfest/snapfest/internal/services/identity"
)

// GuestHandler handles guest identity and directory endpoints
type GuestHandler struct {
	identityService  *identity.Service
	directoryService *directory.Service
}

// NewGuestHandler creates a new guest handler
func NewGuestHandler(identityService *identity.Service, directoryService *directory.Service) *GuestHandler {
	return &GuestHandler{
		identityService:  identityService,
		directoryService: directoryService,
	}
}

// SignIn handles POST /api/v1/guests/signin
func (h *GuestHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req request.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	result, err := h.identityService.SignIn(r.Context(), req.Name, req.Nickname)
	if err != nil {
		WriteError(w, err)
		return
	}

	status := http.StatusOK
	if !result.Returning {
		status = http.StatusCreated
	}
	response.JSON(w, status, response.SignInResponse{
		Guest:     response.GuestFromModel(result.Guest),
		Returning: result.Returning,
	})
}

// ConfirmSuggestion handles POST /api/v1/guests/confirm
func (h *GuestHandler) ConfirmSuggestion(w http.ResponseWriter, r *http.Request) {
	var req request.ConfirmSuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.GuestID == "" {
		WriteError(w, NewInvalidRequestError("guest_id is required"))
		return
	}

	guest, err := h.identityService.ConfirmSuggestion(r.Context(), model.GuestID(req.GuestID), req.Nickname)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SignInResponse{
		Guest:     response.GuestFromModel(guest),
		Returning: true,
	})
}

// ElevateRole handles POST /api/v1/guests/me/role
func (h *GuestHandler) ElevateRole(w http.ResponseWriter, r *http.Request) {
	requester := middleware.MustGetGuest(r.Context())

	var req request.ElevateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.AccessCode == "" {
		WriteError(w, NewInvalidRequestError("access_code is required"))
		return
	}

	guest, err := h.identityService.ElevateRole(r.Context(), requester.ID, req.AccessCode, model.Role(req.Role))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GuestFromModel(guest))
}

// List handles GET /api/v1/guests
func (h *GuestHandler) List(w http.ResponseWriter, r *http.Request) {
	guests, err := h.directoryService.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GuestsFromModel(guests))
}

// RecalculatePhotoCount handles POST /api/v1/guests/{guest_id}/recount
func (h *GuestHandler) RecalculatePhotoCount(w http.ResponseWriter, r *http.Request) {
	guestID := model.GuestID(mux.Vars(r)["guest_id"])

	count, err := h.directoryService.RecalculatePhotoCount(r.Context(), guestID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PhotoCountResponse{PhotoCount: count})
}
