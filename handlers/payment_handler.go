package handlers

import (
	"net/http"

	"github.com/EzequielDigiacomo/sigdef-admin/models"
	"github.com/EzequielDigiacomo/sigdef-admin/services"
)

type PaymentHandler struct {
	payments services.PaymentService
}

func NewPaymentHandler(ps services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: ps}
}

func (h *PaymentHandler) CreatePreference(w http.ResponseWriter, r *http.Request) {
	var input models.PaymentPreferenceInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	pref, err := h.payments.CreatePreference(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"preference": pref}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
