package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/AlexZinkM/evm-wallet/docs"
	"github.com/AlexZinkM/evm-wallet/internal/api"
	"github.com/AlexZinkM/evm-wallet/internal/client"
	"github.com/AlexZinkM/evm-wallet/internal/config"
	"github.com/AlexZinkM/evm-wallet/internal/crypto"
	"github.com/AlexZinkM/evm-wallet/internal/handler"
	"github.com/AlexZinkM/evm-wallet/internal/session"
	"github.com/AlexZinkM/evm-wallet/wallet"

	"github.com/btcsuite/btclog/v2"
)

// @title           EVM Wallet API
// @version         1.0
// @description     Local self-custody wallet daemon for BNB Smart Chain testnet (BNB, USDT, USDC).
// @BasePath        /
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Init(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg := config.Get()

	log := setupLogging(cfg.LogLevel)

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chain, err := client.NewChainClient(ctx, cfg.RPCURL)
	if err != nil {
		return err
	}
	defer chain.Close()

	accounts := client.NewAccountClient(cfg.AccountAPIURL)
	cipher := crypto.NewCipher(crypto.ScryptParams{N: cfg.ScryptN, R: 8, P: 1})
	machine := session.NewMachine(store, cipher, accounts)

	var chainID *big.Int
	if cfg.ChainID != 0 {
		chainID = big.NewInt(cfg.ChainID)
	}

	w := wallet.New(wallet.Config{
		Session:      machine,
		Chain:        chain,
		Explorer:     client.NewExplorerClient(cfg.ExplorerAPIURL, cfg.ExplorerAPIKey, cfg.ExplorerRPS),
		Contacts:     accounts,
		TxLog:        accounts,
		Prices:       client.NewCoinGeckoClient(cfg.PriceAPIURL, cfg.PriceCoinID),
		Assets:       wallet.NewAssets(cfg.NativeSymbol, cfg.Tokens),
		HistoryLimit: cfg.HistoryLimit,
		FeeDebounce:  cfg.FeeDebounce,
		Submitter: wallet.SubmitterConfig{
			ChainID:           chainID,
			ConfirmTimeout:    cfg.ConfirmTimeout,
			ConfirmPoll:       cfg.ConfirmPoll,
			CancelBumpPercent: cfg.CancelFeeBumpPercent,
			Cooldown:          cfg.SendCooldown,
		},
	})
	defer w.Stop()

	log.Infof("Assets: %s, tokens %s", cfg.NativeSymbol,
		strings.Join(cfg.TokenSymbols(), ", "))

	status := machine.Restore()
	log.Infof("Session restored: %s", status)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.SetupRouter(w),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Infof("Server starting on port %s", cfg.Port)
		log.Infof("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Port)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// setupLogging routes every subsystem to stdout at the configured level
// and returns the daemon's own logger
func setupLogging(level string) btclog.Logger {
	h := btclog.NewDefaultHandler(os.Stdout)
	lvl, ok := btclog.LevelFromString(level)
	if !ok {
		lvl = btclog.LevelInfo
	}

	sub := func(tag string) btclog.Logger {
		l := btclog.NewSLogger(h.SubSystem(tag))
		l.SetLevel(lvl)
		return l
	}

	session.UseLogger(sub(session.Subsystem))
	client.UseLogger(sub(client.Subsystem))
	wallet.UseLogger(sub(wallet.Subsystem))
	handler.UseLogger(sub(handler.Subsystem))

	return sub("WLTD")
}

// openStore opens the configured session backend. Both backends hold an
// exclusive process lock until closed.
func openStore(cfg *config.Config) (session.Store, func(), error) {
	if cfg.SessionBackend == "bolt" {
		s, err := session.OpenBoltStore(cfg.SessionDBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}

	release, err := session.LockFile(cfg.SessionFilePath)
	if err != nil {
		return nil, nil, err
	}
	return session.NewFileStore(cfg.SessionFilePath), release, nil
}
