package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"saas-pos/internal/apiclient"
	"saas-pos/internal/config"
	"saas-pos/internal/db"
	"saas-pos/internal/document"
	"saas-pos/internal/logging"
	"saas-pos/internal/migrate"
	cartrepo "saas-pos/internal/repository/cart"
	invoicerepo "saas-pos/internal/repository/invoice"
	salerepo "saas-pos/internal/repository/sale"
	"saas-pos/internal/service/cart"
	"saas-pos/internal/session"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	branch := flag.String("branch", cfg.BranchID, "branch id (defaults to POS_BRANCH_ID)")
	flag.Parse()
	cfg.BranchID = *branch

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.BranchID == "" {
		logger.Fatal("no branch configured, set POS_BRANCH_ID or -branch")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("terminal stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	client, err := apiclient.New(cfg.APIBaseURL,
		apiclient.WithToken(cfg.APIToken),
		apiclient.WithTimeout(cfg.HTTPTimeout),
		apiclient.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	sales, closeSales, err := openJournal(ctx, cfg.DBConnString, logger)
	if err != nil {
		return err
	}
	defer closeSales()

	sess := session.New(cfg.BranchID)
	svc := cart.New(cart.Deps{
		Carts:    cartrepo.NewHTTP(client, logger),
		Invoices: invoicerepo.NewHTTP(client, logger),
		Session:  sess,
		Notifier: printNotifier{w: os.Stdout},
		Opener:   document.FileOpener{Dir: cfg.PDFDir, Logger: logger},
		Sales:    sales,
		Logger:   logger,
	})

	sess.SetCartOpen(true)
	defer sess.SetCartOpen(false)

	sh := &shell{svc: svc, sess: sess, sales: sales, out: os.Stdout}
	if err := svc.EnsureCart(ctx); err != nil {
		fmt.Fprintf(os.Stdout, "cart unavailable: %v\n", err)
	} else {
		sh.printState()
	}
	return sh.run(ctx, os.Stdin)
}

// openJournal uses Postgres when a DSN is configured and memory otherwise.
func openJournal(ctx context.Context, dsn string, logger *zap.Logger) (salerepo.Repository, func(), error) {
	if dsn == "" {
		logger.Info("DB_DSN not set, sales are journaled in memory")
		return salerepo.NewMemory(), func() {}, nil
	}
	pool, err := db.Connect(ctx, dsn, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect sale journal: %w", err)
	}
	if err := migrate.Apply(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}
	return salerepo.NewPostgres(pool, logger), pool.Close, nil
}
