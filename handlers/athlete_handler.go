package handlers

import (
	"context"
	"net/http"

	"github.com/EzequielDigiacomo/sigdef-admin/services"
)

// AthleteHandler serves the enriched registry listings and the role deletions that must clear
// guardian links first.
type AthleteHandler struct {
	enrichment services.EnrichmentService
	guardians  services.GuardianService
}

func NewAthleteHandler(es services.EnrichmentService, gs services.GuardianService) *AthleteHandler {
	return &AthleteHandler{enrichment: es, guardians: gs}
}

// ListAthletes godoc
// @Summary Enriched athlete listing
// @Tags athletes
// @Description Athletes joined with person, club name and first guardian. Collections that could not be fetched are listed under "degraded".
// @Produce json
// @Success 200 {object} services.AthleteListing
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /v1/athletes [get]
func (h *AthleteHandler) ListAthletes(w http.ResponseWriter, r *http.Request) {
	listing, err := h.enrichment.ListAthletes(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, listing, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AthleteHandler) ListTutors(w http.ResponseWriter, r *http.Request) {
	listing, err := h.enrichment.ListTutors(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, listing, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AthleteHandler) ListCoaches(w http.ResponseWriter, r *http.Request) {
	listing, err := h.enrichment.ListCoaches(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, listing, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ClubRoster godoc
// @Summary Club roster
// @Tags clubs
// @Produce json
// @Param clubID path int true "Club ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /v1/clubs/{clubID}/roster [get]
func (h *AthleteHandler) ClubRoster(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	roster, err := h.enrichment.ClubRoster(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"roster": roster}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteTutor godoc
// @Summary Delete a tutor
// @Tags tutors
// @Description Removes every athlete link of the tutor, then the tutor record. If a link cannot be removed the tutor is kept and 409 is returned.
// @Param tutorID path int true "Tutor person ID"
// @Success 200 {object} services.DeleteResult
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /v1/tutors/{tutorID} [delete]
func (h *AthleteHandler) DeleteTutor(w http.ResponseWriter, r *http.Request) {
	h.deleteRole(w, r, "tutorID", h.guardians.DeleteTutor)
}

func (h *AthleteHandler) DeleteAthlete(w http.ResponseWriter, r *http.Request) {
	h.deleteRole(w, r, "athleteID", h.guardians.DeleteAthlete)
}

func (h *AthleteHandler) deleteRole(w http.ResponseWriter, r *http.Request, param string, del func(context.Context, int) (*services.DeleteResult, error)) {
	id, err := getIDFromURL(r, param)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	result, err := del(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
