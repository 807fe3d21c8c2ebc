package handler

import (
	"net/http"

	"github.com/AlexZinkM/evm-wallet/internal/model"
)

// Contacts handles GET /contacts and POST /contacts
// @Summary      Address book
// @Description  GET lists the contacts of the loaded wallet, POST adds one
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        request  body      model.ContactRequest  false  "Contact (POST only)"
// @Success      200      {array}   model.Contact
// @Failure      400      {object}  model.ErrorResponse
// @Router       /contacts [get]
// @Router       /contacts [post]
func (h *WalletHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		contacts, err := h.wallet.Contacts(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if contacts == nil {
			contacts = []model.Contact{}
		}
		writeJSON(w, http.StatusOK, contacts)

	case http.MethodPost:
		var req model.ContactRequest
		if !decode(w, r, &req) {
			return
		}
		contact, err := h.wallet.AddContact(r.Context(), &req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, contact)

	default:
		http.Error(w, "Method not allowed. Should be GET or POST", http.StatusMethodNotAllowed)
	}
}

// DeleteContact handles DELETE /contacts/{id}
// @Summary      Delete contact
// @Tags         contacts
// @Param        id  path  string  true  "Contact ID"
// @Success      204
// @Router       /contacts/{id} [delete]
func (h *WalletHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodDelete) {
		return
	}

	if err := h.wallet.DeleteContact(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
