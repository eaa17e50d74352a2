package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidID          = "invalid_id"
	codeNameRequired       = "name_required"
	codeEmailRequired      = "email_required"
	codeInvalidSlotTime    = "invalid_slot_time"
	codeSlotUnavailable    = "slot_unavailable"
	codeSlotNotFound       = "slot_not_found"
	codeSlotNotEditable    = "slot_not_editable"
	codeSlotOverlap        = "slot_overlap"
	codeBookingNotFound    = "booking_not_found"
	codeAlreadyBooked      = "already_booked"
	codeInvalidSignature   = "invalid_signature"
	codeUnauthenticated    = "unauthenticated"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
