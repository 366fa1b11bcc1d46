// Command walletctl is an interactive terminal client for a custodial
// crypto-asset wallet backend. It manages the authenticated session, a
// cached balance view, validated transfers and withdrawals, and the
// paginated transaction history.
//
// Usage:
//
//	walletctl --config config.yaml
//	walletctl --api http://localhost:8000/api/v1
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/vadiminshakov/walletctl/config"
	"github.com/vadiminshakov/walletctl/internal/services/auth"
	"github.com/vadiminshakov/walletctl/internal/services/history"
	"github.com/vadiminshakov/walletctl/internal/services/wallet"
	"github.com/vadiminshakov/walletctl/internal/storage/journal"
	"github.com/vadiminshakov/walletctl/internal/storage/session"
	"github.com/vadiminshakov/walletctl/internal/transport"
	"github.com/vadiminshakov/walletctl/internal/tui"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store, err := session.NewSQLiteStore(cfg.SessionDBPath, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	dispatcher := transport.New(cfg.BaseURL, logger, transport.WithTimeout(cfg.RequestTimeout))

	authMgr, err := auth.NewManager(dispatcher, store, logger)
	if err != nil {
		log.Fatal(err)
	}
	dispatcher.Bind(authMgr, authMgr)

	jrnl, err := journal.New(cfg.JournalDir)
	if err != nil {
		log.Fatal(err)
	}
	defer jrnl.Close()

	balances := wallet.NewBalanceCache(dispatcher, logger)
	walletSvc := wallet.NewService(dispatcher, balances, jrnl, logger)
	historyCtl := history.NewController(dispatcher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := tui.New(cfg, authMgr, walletSvc, historyCtl, logger)
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
