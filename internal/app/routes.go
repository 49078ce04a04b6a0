package app

import (
	"net/http"

	"github.com/spectrumarena/arenapay/internal/handler"
	"github.com/spectrumarena/arenapay/internal/middleware"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	middlewareRepo := middleware.New(app.errorHandler, app.Logger, app.DB.User(), &app.Config)

	healthHandler := handler.NewHealthCheckHandler(app.errorHandler)

	walletHandler := handler.NewWalletHandler(&handler.WalletHandler{
		WalletRepo:            app.DB.Wallet(),
		WalletTransactionRepo: app.DB.WalletTransaction(),
		ErrHandler:            app.errorHandler,
	})

	savingsHandler := handler.NewSavingsHandler(&handler.SavingsHandler{
		Engine:                 app.SavingsEngine,
		PlanRepo:               app.DB.SavingsPlan(),
		SavingsTransactionRepo: app.DB.SavingsTransaction(),
		Cache:                  app.Cache,
		Mailer:                 app.Mailer,
		Helper:                 app.helper,
		ErrHandler:             app.errorHandler,
	})

	paymentHandler := handler.NewPaymentHandler(&handler.PaymentHandler{
		Paystack:           app.Paystack,
		IdempotencyKeyRepo: app.DB.IdempotencyKey(),
		SavedCardRepo:      app.DB.SavedCard(),
		PlanRepo:           app.DB.SavingsPlan(),
		ErrHandler:         app.errorHandler,
	})

	webhookHandler := handler.NewWebhookHandler(&handler.WebhookHandler{
		DB:                app.DB,
		WalletService:     app.WalletService,
		Engine:            app.SavingsEngine,
		Kafka:             app.Kafka,
		Helper:            app.helper,
		ErrHandler:        app.errorHandler,
		Logger:            app.Logger,
		PaystackSecretKey: app.Config.Paystack.SecretKey,
	})

	mux.HandleFunc("GET /status", healthHandler.HandleHealthCheck)

	// Webhooks authenticate with the gateway signature, not a user token.
	mux.HandleFunc("POST /webhooks/paystack", webhookHandler.HandlePaystackWebhook)

	mux.Handle("GET /wallet", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(walletHandler.HandleWalletDetails)))
	mux.Handle("GET /wallet/balance", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(walletHandler.HandleWalletBalance)))
	mux.Handle("GET /wallet/transactions", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(walletHandler.HandleWalletTransactions)))

	mux.Handle("POST /savings", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(savingsHandler.HandleCreatePlan)))
	mux.Handle("GET /savings", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(savingsHandler.HandleListPlans)))
	mux.Handle("GET /savings/{id}/activity", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(savingsHandler.HandlePlanActivity)))
	mux.Handle("POST /savings/{id}/withdraw/otp", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(savingsHandler.HandleRequestWithdrawOTP)))
	mux.Handle("POST /savings/{id}/withdraw", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(savingsHandler.HandleWithdraw)))
	mux.Handle("POST /savings/{id}/fund", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(paymentHandler.HandleInitSavingsFunding)))

	mux.Handle("POST /payments/fund-wallet", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(paymentHandler.HandleInitWalletFunding)))
	mux.Handle("POST /payments/charge-card", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(paymentHandler.HandleChargeSavedCard)))
	mux.Handle("GET /payments/cards", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(paymentHandler.HandleListSavedCards)))
	mux.Handle("DELETE /payments/cards/{id}", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(paymentHandler.HandleDeactivateCard)))

	return middlewareRepo.LogAccess(middlewareRepo.RecoverPanic(middlewareRepo.Authenticate(mux)))
}
