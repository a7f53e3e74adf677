package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/matchpoint/tournament-api/middleware"
	"github.com/matchpoint/tournament-api/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bracketService services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bracketService}
}

// Generate handles POST /tournaments/{tournamentID}/bracket. Builds the
// match tree from the confirmed roster and activates the tournament.
func (h *BracketHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	bracket, err := h.bracketService.GenerateBracket(r.Context(), chi.URLParam(r, "tournamentID"), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusCreated, jsonResponse{"bracket": bracket}, nil)
}

// Get handles GET /tournaments/{tournamentID}/bracket. Returns the bracket
// together with the tournament and its participants.
func (h *BracketHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.bracketService.GetBracketView(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, view, nil)
}

type recordResultRequest struct {
	Score1 int `json:"score1"`
	Score2 int `json:"score2"`
}

// RecordResult handles POST /tournaments/{tournamentID}/matches/{matchID}/result.
func (h *BracketHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var req recordResultRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.bracketService.RecordResult(r.Context(), services.RecordResultInput{
		TournamentID: chi.URLParam(r, "tournamentID"),
		MatchID:      chi.URLParam(r, "matchID"),
		Score1:       req.Score1,
		Score2:       req.Score2,
		RequesterID:  userID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	_ = writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil)
}
