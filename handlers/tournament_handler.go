package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/matchpoint/tournament-api/middleware"
	"github.com/matchpoint/tournament-api/models"
	"github.com/matchpoint/tournament-api/services"
)

const maxLogoBytes = 5 * 1024 * 1024 // 5MB

type TournamentHandler struct {
	tournamentService  services.TournamentService
	participantService services.ParticipantService
}

func NewTournamentHandler(
	tournamentService services.TournamentService,
	participantService services.ParticipantService,
) *TournamentHandler {
	return &TournamentHandler{
		tournamentService:  tournamentService,
		participantService: participantService,
	}
}

// Create handles POST /tournaments.
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil)
}

// List handles GET /tournaments. An optional ?status= query filters by
// lifecycle status.
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	var status *models.TournamentStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.TournamentStatus(raw)
		if !s.Valid() {
			badRequestResponse(w, r, errors.New("invalid status filter"))
			return
		}
		status = &s
	}

	tournaments, err := h.tournamentService.List(r.Context(), status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil)
}

// Get handles GET /tournaments/{tournamentID}.
func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournament, err := h.tournamentService.GetByID(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil)
}

// OpenRegistration handles POST /tournaments/{tournamentID}/open-registration.
func (h *TournamentHandler) OpenRegistration(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.tournamentService.OpenRegistration)
}

// Cancel handles POST /tournaments/{tournamentID}/cancel.
func (h *TournamentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.tournamentService.Cancel)
}

func (h *TournamentHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id, requesterID string) (*models.Tournament, error),
) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	tournament, err := op(r.Context(), chi.URLParam(r, "tournamentID"), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil)
}

// UploadLogo handles POST /tournaments/{tournamentID}/logo. Expects a
// multipart form with a "logo" file field.
func (h *TournamentHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxLogoBytes)
	if err := r.ParseMultipartForm(maxLogoBytes); err != nil {
		badRequestResponse(w, r, errors.New("invalid multipart form or file too large"))
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, errors.New("missing 'logo' file field"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "image/png" && contentType != "image/jpeg" && contentType != "image/webp" {
		badRequestResponse(w, r, errors.New("logo must be a png, jpeg or webp image"))
		return
	}

	tournament, err := h.tournamentService.UploadLogo(
		r.Context(), chi.URLParam(r, "tournamentID"), userID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil)
}

// Join handles POST /tournaments/join/{inviteToken}.
func (h *TournamentHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	participant, err := h.participantService.JoinByInviteToken(
		r.Context(), chi.URLParam(r, "inviteToken"), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusCreated, jsonResponse{"participant": participant}, nil)
}

// ListParticipants handles GET /tournaments/{tournamentID}/participants.
func (h *TournamentHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.participantService.ListByTournament(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"participants": participants}, nil)
}
