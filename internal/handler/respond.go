package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/evm-wallet/internal/model"
)

// writeJSON writes v with status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the {"error": ...} body with the status of the error kind
func writeError(w http.ResponseWriter, err error) {
	resp := model.ErrorResponse{Error: err.Error()}

	var we *model.WalletError
	if errors.As(err, &we) {
		resp.Code = string(we.Kind)
		// Chain and transport errors carry the reason given by the node
		if we.Kind == model.KindNetwork || we.Kind == model.KindChain {
			resp.Error = we.Error()
		} else {
			resp.Error = we.Message
		}
	}

	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Errorf("Request failed: %v", err)
	}
	writeJSON(w, status, resp)
}

// statusOf maps an error kind to an HTTP status
func statusOf(err error) int {
	switch model.KindOf(err) {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindAuth:
		return http.StatusUnauthorized
	case model.KindNetwork:
		return http.StatusBadGateway
	case model.KindChain:
		return http.StatusUnprocessableEntity
	case model.KindSession:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v and answers 400 on failure
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return false
	}
	return true
}

// allow answers 405 unless r uses method
func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed. Should be "+method, http.StatusMethodNotAllowed)
		return false
	}
	return true
}
