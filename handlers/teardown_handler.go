package handlers

import (
	"net/http"

	"github.com/EzequielDigiacomo/sigdef-admin/services"
	"github.com/go-chi/chi/v5"
)

type TeardownHandler struct {
	jobs services.TeardownJobs
}

func NewTeardownHandler(jobs services.TeardownJobs) *TeardownHandler {
	return &TeardownHandler{jobs: jobs}
}

type startTeardownInput struct {
	Passphrase string `json:"passphrase"`
}

// Start godoc
// @Summary Start a teardown
// @Tags admin
// @Description Deletes every record of the managed collections in dependency order. Runs in the background; progress is pushed on /ws/teardown/{jobID}.
// @Accept json
// @Produce json
// @Param body body startTeardownInput true "Passphrase, required when configured"
// @Success 202 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string "A teardown is already running"
// @Security BearerAuth
// @Router /v1/admin/teardown [post]
func (h *TeardownHandler) Start(w http.ResponseWriter, r *http.Request) {
	var input startTeardownInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	job, err := h.jobs.Start(r.Context(), input.Passphrase)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	headers := make(http.Header)
	headers.Set("Location", "/v1/admin/teardown/"+job.ID)
	response := jsonResponse{"job_id": job.ID, "status": job.Status, "progress_url": "/ws/teardown/" + job.ID}
	if err := writeJSON(w, http.StatusAccepted, response, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeardownHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Get(chi.URLParam(r, "jobID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"job": job}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
