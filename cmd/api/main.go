package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"licensestore/internal/config"
	"licensestore/internal/db"
	"licensestore/internal/httpserver"
	"licensestore/internal/migrate"
	"licensestore/internal/payment/paypal"
	adminrepo "licensestore/internal/repository/admin"
	cartrepo "licensestore/internal/repository/cart"
	"licensestore/internal/repository/catalog"
	custrepo "licensestore/internal/repository/customer"
	draftrepo "licensestore/internal/repository/draft"
	orderrepo "licensestore/internal/repository/order"
	staterepo "licensestore/internal/repository/state"
	tokenrepo "licensestore/internal/repository/token"
	adminsvc "licensestore/internal/service/admin"
	cartsvc "licensestore/internal/service/cart"
	checkoutsvc "licensestore/internal/service/checkout"
	customersvc "licensestore/internal/service/customer"
	licensesvc "licensestore/internal/service/license"
	themesvc "licensestore/internal/service/theme"
)

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags)
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	catalogRepo := catalog.NewPostgres(pool, logger)
	carts := cartrepo.NewPostgres(pool)
	drafts := draftrepo.NewPostgres(pool)
	orders := orderrepo.NewPostgres(pool, logger)
	state := staterepo.NewPostgres(pool)
	customers := custrepo.NewPostgres(pool, logger)
	tokens := tokenrepo.NewPostgres(pool)
	adminSessions := adminrepo.NewPostgres(pool)

	payments := paypal.New(cfg.PayPal.BaseURL, cfg.PayPal.ClientID, cfg.PayPal.Secret, logger)
	issuer := licensesvc.New(orders, cfg.LicenseKeyPrefix, cfg.LicenseValidity)

	cartService := cartsvc.New(carts, catalogRepo, cfg.Currency)
	checkoutService := checkoutsvc.New(drafts, carts, orders, issuer, payments, state, checkoutsvc.Config{
		Currency:        cfg.Currency,
		TaxRate:         cfg.TaxRate,
		MinPurchase:     cfg.MinPurchase,
		MaxPurchase:     cfg.MaxPurchase,
		CardSettleDelay: cfg.CardSettleDelay,
		CryptoWallet:    cfg.CryptoWallet,
	}, logger)
	customerService := customersvc.New(customers, tokens)
	adminService := adminsvc.New(orders, adminSessions, customers, catalogRepo, checkoutService, cfg.AdminAccessCodes, cfg.AdminSessionTTL, logger)
	themeService := themesvc.New(state)

	server, err := httpserver.New(cfg.HTTPAddr, logger, pool, httpserver.Deps{
		Catalog:  catalogRepo,
		Cart:     cartService,
		Checkout: checkoutService,
		Customer: customerService,
		Admin:    adminService,
		Theme:    themeService,
		Orders:   orders,
		State:    state,
	}, cfg.AllowedOrigins)
	if err != nil {
		logger.Fatalf("build server: %v", err)
	}

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}
