package handlers

import (
	"net/http"

	"github.com/EzequielDigiacomo/sigdef-admin/services"
	"github.com/go-chi/chi/v5"
)

type WorkflowHandler struct {
	guardians services.GuardianService
	transfers services.TransferService
	assign    services.AssignmentService
	runs      services.WorkflowRunService
}

func NewWorkflowHandler(
	gs services.GuardianService,
	ts services.TransferService,
	as services.AssignmentService,
	rs services.WorkflowRunService,
) *WorkflowHandler {
	return &WorkflowHandler{guardians: gs, transfers: ts, assign: as, runs: rs}
}

// LinkGuardian godoc
// @Summary Link a minor to a guardian
// @Tags workflows
// @Description Replaces every guardian link of the athlete with one link to the tutor and copies missing contact data from the tutor. A failure after a link was removed answers 502 with the completed steps.
// @Accept json
// @Produce json
// @Param body body services.LinkGuardianInput true "Athlete and tutor"
// @Success 200 {object} services.LinkGuardianResult
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{} "State may be inconsistent"
// @Security BearerAuth
// @Router /v1/workflows/link-guardian [post]
func (h *WorkflowHandler) LinkGuardian(w http.ResponseWriter, r *http.Request) {
	var input services.LinkGuardianInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	result, err := h.guardians.LinkMinorToGuardian(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Transfer godoc
// @Summary Transfer an athlete to another club
// @Tags workflows
// @Description Moving an athlete out of a club requires "confirmado": true. Without it the answer is 409 with the current and target club so the client can ask the user.
// @Accept json
// @Produce json
// @Param body body services.TransferInput true "Athlete and target club"
// @Success 200 {object} services.TransferResult
// @Failure 409 {object} map[string]interface{} "Confirmation required"
// @Security BearerAuth
// @Router /v1/workflows/transfer [post]
func (h *WorkflowHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var input services.TransferInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	result, err := h.transfers.Transfer(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if result.Outcome == services.TransferNeedsConfirmation {
		writeEnvelope(w, r, http.StatusConflict, jsonResponse{
			"error":    services.ErrConfirmationRequired.Error(),
			"warning":  "El atleta pertenece a " + result.FromClubName + ". ¿Transferir a " + result.ToClubName + "?",
			"transfer": result,
		})
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *WorkflowHandler) AssignTutor(w http.ResponseWriter, r *http.Request) {
	var input services.AssignTutorInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	result, err := h.assign.AssignTutor(r.Context(), input)
	h.writeAssignment(w, r, result, err)
}

func (h *WorkflowHandler) AssignDelegate(w http.ResponseWriter, r *http.Request) {
	var input services.AssignDelegateInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	result, err := h.assign.AssignDelegate(r.Context(), input)
	h.writeAssignment(w, r, result, err)
}

func (h *WorkflowHandler) writeAssignment(w http.ResponseWriter, r *http.Request, result *services.AssignmentResult, err error) {
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	status := http.StatusOK
	if result.Outcome == services.AssignmentCreated {
		status = http.StatusCreated
	}
	if err := writeJSON(w, status, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *WorkflowHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"run": run}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListIncomplete returns runs that failed or never finished, for manual repair.
func (h *WorkflowHandler) ListIncomplete(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runs.ListIncomplete(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"runs": runs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
