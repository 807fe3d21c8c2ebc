package api

import (
	"net/http"

	"github.com/AlexZinkM/evm-wallet/internal/handler"
	"github.com/AlexZinkM/evm-wallet/wallet"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers
func SetupRouter(w *wallet.Wallet) http.Handler {
	walletHandler := handler.NewWalletHandler(w)

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Session endpoints
	mux.HandleFunc("/wallet/create", walletHandler.Create)
	mux.HandleFunc("/wallet/import", walletHandler.Import)
	mux.HandleFunc("/wallet/fetch", walletHandler.Fetch)
	mux.HandleFunc("/wallet/unlock", walletHandler.Unlock)
	mux.HandleFunc("/wallet/lock", walletHandler.Lock)
	mux.HandleFunc("/wallet/reset-password", walletHandler.ResetPassword)
	mux.HandleFunc("/wallet/reveal", walletHandler.Reveal)
	mux.HandleFunc("/wallet/status", walletHandler.Status)

	// Wallet endpoints
	mux.HandleFunc("/wallet/balance", walletHandler.Balance)
	mux.HandleFunc("/wallet/receive", walletHandler.Receive)
	mux.HandleFunc("/wallet/fee", walletHandler.Fee)
	mux.HandleFunc("/wallet/draft", walletHandler.Draft)
	mux.HandleFunc("/wallet/send", walletHandler.Send)
	mux.HandleFunc("/wallet/cancel", walletHandler.Cancel)
	mux.HandleFunc("/wallet/history", walletHandler.History)
	mux.HandleFunc("/wallet/pending/{hash}", walletHandler.DismissPending)

	// Contact endpoints
	mux.HandleFunc("/contacts", walletHandler.Contacts)
	mux.HandleFunc("/contacts/{id}", walletHandler.DeleteContact)

	return mux
}
