package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/metrics"
	"github.com/AlexZinkM/evm-wallet/internal/model"
	"github.com/AlexZinkM/evm-wallet/wallet"
)

// WalletHandler serves the wallet session and transaction endpoints
type WalletHandler struct {
	wallet *wallet.Wallet
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(w *wallet.Wallet) *WalletHandler {
	return &WalletHandler{wallet: w}
}

// Create handles POST /wallet/create
// @Summary      Create new wallet
// @Description  Generates a new mnemonic and key and stores them with the account API
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.GenerateRequest  true  "Wallet name and password"
// @Success      200      {object}  model.GenerateResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /wallet/create [post]
func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	var req model.GenerateRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.wallet.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Import handles POST /wallet/import
// @Summary      Import wallet
// @Description  Derives the first account of a mnemonic and stores it with the account API
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.GenerateRequest  true  "Wallet name, password and mnemonic"
// @Success      200      {object}  model.GenerateResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /wallet/import [post]
func (h *WalletHandler) Import(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	var req model.GenerateRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.wallet.Import(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Fetch handles POST /wallet/fetch
// @Summary      Load wallet
// @Description  Fetches a wallet by name and password, stores it encrypted and unlocks it
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        request  body      model.FetchRequest  true  "Wallet name and password"
// @Success      200      {object}  model.StatusResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /wallet/fetch [post]
func (h *WalletHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	var req model.FetchRequest
	if !decode(w, r, &req) {
		return
	}

	account, err := h.wallet.Session().Fetch(r.Context(), req.Name, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.StatusResponse{
		Status:  model.SessionUnlocked,
		Name:    account.Name,
		Address: account.Address,
	})
}

// Unlock handles POST /wallet/unlock
// @Summary      Unlock wallet
// @Description  Decrypts the stored wallet with the password
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        request  body      model.UnlockRequest  true  "Password"
// @Success      200      {object}  model.StatusResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /wallet/unlock [post]
func (h *WalletHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	var req model.UnlockRequest
	if !decode(w, r, &req) {
		return
	}

	account, err := h.wallet.Session().Unlock(req.Password)
	switch {
	case err == nil:
		metrics.UnlockAttempts.WithLabelValues("ok").Inc()
	case model.IsKind(err, model.KindAuth):
		metrics.UnlockAttempts.WithLabelValues("wrong_password").Inc()
	default:
		metrics.UnlockAttempts.WithLabelValues("error").Inc()
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.StatusResponse{
		Status:  model.SessionUnlocked,
		Name:    account.Name,
		Address: account.Address,
	})
}

// Lock handles POST /wallet/lock
// @Summary      Lock wallet
// @Description  Drops the decrypted secrets. With logout the stored wallet is removed too.
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        request  body      model.LockRequest  false  "Logout flag"
// @Success      200      {object}  model.StatusResponse
// @Router       /wallet/lock [post]
func (h *WalletHandler) Lock(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	// Body is optional
	var req model.LockRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}

	if err := h.wallet.Lock(req.Logout); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.StatusResponse{Status: h.wallet.Session().Status()})
}

// ResetPassword handles POST /wallet/reset-password
// @Summary      Reset password
// @Description  Sets a new password using the mnemonic as proof of ownership
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        request  body      model.ResetPasswordRequest  true  "Name, mnemonic and new password"
// @Success      200      {object}  model.MessageResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /wallet/reset-password [post]
func (h *WalletHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	var req model.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	msg, err := h.wallet.ResetPassword(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Success: true, Message: msg})
}

// Reveal handles POST /wallet/reveal
// @Summary      Reveal secrets
// @Description  Returns the private key and mnemonic when the password matches the unlock password
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        request  body      model.UnlockRequest  true  "Password"
// @Success      200      {object}  model.RevealResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /wallet/reveal [post]
func (h *WalletHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	var req model.UnlockRequest
	if !decode(w, r, &req) {
		return
	}

	secrets, err := h.wallet.Session().RevealSecrets(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, model.RevealResponse{
		PrivateKey: secrets.PrivateKey,
		Mnemonic:   secrets.Mnemonic,
	})
}

// Status handles GET /wallet/status
// @Summary      Session status
// @Description  Returns none, locked or unlocked with the loaded account
// @Tags         session
// @Produce      json
// @Success      200  {object}  model.StatusResponse
// @Router       /wallet/status [get]
func (h *WalletHandler) Status(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	sess := h.wallet.Session()
	resp := model.StatusResponse{Status: sess.Status()}
	if account, err := sess.Account(); err == nil {
		resp.Name = account.Name
		resp.Address = account.Address
	}
	writeJSON(w, http.StatusOK, resp)
}

// Balance handles GET /wallet/balance
// @Summary      Get wallet balance
// @Description  Gets native and token balances. Assets that could not be read are "unknown".
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.BalanceResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /wallet/balance [get]
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	resp, err := h.wallet.Balance(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Receive handles GET /wallet/receive
// @Summary      Receive address
// @Description  Returns the wallet address and a QR code of it
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.ReceiveResponse
// @Router       /wallet/receive [get]
func (h *WalletHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	resp, err := h.wallet.Receive()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Fee handles POST /wallet/fee and GET /wallet/fee
// @Summary      Estimate fee
// @Description  POST estimates the fee of a draft once. GET returns the estimate of the draft set with PUT /wallet/draft, if it is settled.
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.TransferDraft  false  "Draft (POST only)"
// @Success      200      {object}  model.FeeResponse
// @Router       /wallet/fee [post]
// @Router       /wallet/fee [get]
func (h *WalletHandler) Fee(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		resp, err := h.wallet.LatestFee()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		var draft model.TransferDraft
		if !decode(w, r, &draft) {
			return
		}
		resp, err := h.wallet.EstimateFee(r.Context(), draft)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)

	default:
		http.Error(w, "Method not allowed. Should be GET or POST", http.StatusMethodNotAllowed)
	}
}

// Draft handles PUT /wallet/draft
// @Summary      Update draft
// @Description  Records the draft being typed and schedules a debounced fee estimate
// @Tags         wallet
// @Accept       json
// @Param        request  body  model.TransferDraft  true  "Draft"
// @Success      204
// @Router       /wallet/draft [put]
func (h *WalletHandler) Draft(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPut) {
		return
	}

	var draft model.TransferDraft
	if !decode(w, r, &draft) {
		return
	}
	if err := h.wallet.SetDraft(draft); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Send handles POST /wallet/send
// @Summary      Send transfer
// @Description  Signs and broadcasts a native or token transfer. Returns once the node accepted it.
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.TransferDraft  true  "Asset, recipient and amount"
// @Success      200      {object}  model.TxHandle
// @Failure      400      {object}  model.ErrorResponse
// @Failure      422      {object}  model.ErrorResponse
// @Router       /wallet/send [post]
func (h *WalletHandler) Send(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	var draft model.TransferDraft
	if !decode(w, r, &draft) {
		return
	}

	handle, err := h.wallet.Send(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, handle)
}

// Cancel handles POST /wallet/cancel
// @Summary      Cancel pending transfer
// @Description  Replaces a pending transaction with a zero-value self transfer at the same nonce
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.CancelRequest  true  "Hash of the pending transaction"
// @Success      200      {object}  model.TxHandle
// @Failure      422      {object}  model.ErrorResponse
// @Router       /wallet/cancel [post]
func (h *WalletHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}

	var req model.CancelRequest
	if !decode(w, r, &req) {
		return
	}

	handle, err := h.wallet.Cancel(r.Context(), strings.TrimSpace(req.Hash))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, handle)
}

// DismissPending handles DELETE /wallet/pending/{hash}
// @Summary      Dismiss failed transfer
// @Description  Removes a failed pending entry from the history
// @Tags         wallet
// @Param        hash  path  string  true  "Transaction hash"
// @Success      204
// @Failure      400  {object}  model.ErrorResponse
// @Router       /wallet/pending/{hash} [delete]
func (h *WalletHandler) DismissPending(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodDelete) {
		return
	}

	if err := h.wallet.DismissPending(r.PathValue("hash")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /wallet/history
// @Summary      Get wallet transactions
// @Description  Gets pending and confirmed transactions, newest first, with filtering capability
// @Tags         wallet
// @Produce      json
// @Param        direction  query     string  false  "IN or OUT"
// @Param        asset      query     string  false  "Asset symbol"
// @Param        status     query     string  false  "Pending, Confirmed or Failed"
// @Param        from       query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to         query     string  false  "End date (YYYY-MM-DD)"
// @Param        fresh      query     bool    false  "Bypass the last refreshed history"
// @Success      200        {object}  model.HistoryResponse
// @Failure      400        {object}  model.ErrorResponse
// @Router       /wallet/history [get]
func (h *WalletHandler) History(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	filter, err := parseHistoryFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.wallet.History(r.Context(), filter, fresh(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseHistoryFilter reads the history query parameters
func parseHistoryFilter(r *http.Request) (*model.HistoryFilter, error) {
	var filter model.HistoryFilter
	q := r.URL.Query()

	// Parse date parameters (YYYY-MM-DD)
	const dateLayout = "2006-01-02"
	if fromStr := q.Get("from"); fromStr != "" {
		t, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			return nil, model.NewValidationError("invalid from date: use YYYY-MM-DD (e.g. 2006-01-02)")
		}
		filter.From = &t
	}
	if toStr := q.Get("to"); toStr != "" {
		t, err := time.Parse(dateLayout, toStr)
		if err != nil {
			return nil, model.NewValidationError("invalid to date: use YYYY-MM-DD (e.g. 2006-01-02)")
		}
		// End of day so filter is inclusive
		t = t.Add(24*time.Hour - time.Nanosecond)
		filter.To = &t
	}

	if dir := q.Get("direction"); dir != "" {
		d := model.Direction(strings.ToUpper(dir))
		filter.Direction = &d
	}
	if asset := q.Get("asset"); asset != "" {
		filter.Asset = &asset
	}
	if status := q.Get("status"); status != "" {
		s := model.TxStatus(status)
		filter.Status = &s
	}

	return &filter, nil
}

// fresh reads the fresh query flag
func fresh(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("fresh"))
	return v
}
