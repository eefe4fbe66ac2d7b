package main

import (
	"context"
	"net/http"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/sendgrid/sendgrid-go"
	twilio "github.com/twilio/twilio-go"

	"github.com/dormhub/dorms-service/internal/app"
	"github.com/dormhub/dorms-service/internal/config"
	"github.com/dormhub/dorms-service/internal/constants"
	"github.com/dormhub/dorms-service/internal/controllers"
	"github.com/dormhub/dorms-service/internal/middleware"
	"github.com/dormhub/dorms-service/internal/models"
	"github.com/dormhub/dorms-service/internal/repositories"
	"github.com/dormhub/dorms-service/internal/routes"
	"github.com/dormhub/dorms-service/internal/services"
	"github.com/dormhub/dorms-service/internal/utils"
	"github.com/dormhub/dorms-service/internal/vnpay"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize dorms-service:", err)
	}
	defer application.Close()

	userRepo := repositories.NewUserRepository(application.DB)
	bldgRepo := repositories.NewBuildingRepository(application.DB)
	roomRepo := repositories.NewRoomRepository(application.DB)
	regRepo := repositories.NewRegistrationRepository(application.DB)
	swapRepo := repositories.NewSwapRepository(application.DB)
	feeTypeRepo := repositories.NewFeeTypeRepository(application.DB)
	invoiceRepo := repositories.NewInvoiceRepository(application.DB)
	deviceRepo := repositories.NewDeviceRepository(application.DB)
	notifRepo := repositories.NewNotificationRepository(application.DB)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedTestData(context.Background(), application.DB); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		}
	}

	sgClient := sendgrid.NewSendClient(cfg.SendGridAPIKey)
	twClient := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	emailSender := services.NewSendGridEmailSender(
		sgClient, "Dormitory Management Office", cfg.LDFlag_SendgridFromEmail, cfg.LDFlag_SendgridSandboxMode,
	)
	pushSender, err := services.NewFCMPushSender(context.Background(), application.Firebase)
	if err != nil {
		utils.Logger.Fatal("Failed to create FCM push sender:", err)
	}
	smsSender := services.NewTwilioSMSSender(twClient, cfg.LDFlag_TwilioFromPhone)

	notifService := services.NewNotificationService(
		regRepo, userRepo, deviceRepo, notifRepo,
		emailSender, pushSender, smsSender,
	)

	regService := services.NewRegistrationService(regRepo, roomRepo, userRepo)
	swapService := services.NewSwapService(swapRepo, regRepo, roomRepo, userRepo)
	invoiceService := services.NewInvoiceService(
		invoiceRepo, feeTypeRepo, roomRepo, notifService, cfg.LDFlag_InvoiceReadyFeeTypes,
	)

	gateway := vnpay.NewClient(cfg.VNPayTmnCode, cfg.VNPayHashSecret, cfg.VNPayPaymentURL, cfg.VNPayReturnURL)

	var activeMethods []models.PaymentMethodType
	for _, m := range cfg.LDFlag_ActivePaymentMethods {
		activeMethods = append(activeMethods, models.PaymentMethodType(m))
	}
	paymentService := services.NewPaymentService(
		invoiceRepo, regRepo, roomRepo, gateway, notifService, activeMethods,
	)

	reminderService := services.NewReminderService(invoiceRepo, roomRepo, notifService)

	healthController := controllers.NewHealthController(application)
	roomsController := controllers.NewRoomsController(roomRepo, bldgRepo)
	regsController := controllers.NewRegistrationsController(regService)
	swapsController := controllers.NewSwapsController(swapService)
	invoicesController := controllers.NewInvoicesController(invoiceService, userRepo, regRepo)
	paymentsController := controllers.NewPaymentsController(paymentService)
	notifController := controllers.NewNotificationsController(notifService, userRepo)

	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	// Gateway callbacks are signed, not token-authenticated.
	router.HandleFunc(routes.VNPayIPN, paymentsController.VNPayIPNHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.VNPayReturn, paymentsController.VNPayReturnHandler).Methods(http.MethodGet)

	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

	secured.HandleFunc(routes.Rooms, roomsController.ListRoomsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Room, roomsController.GetRoomHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Buildings, roomsController.ListBuildingsHandler).Methods(http.MethodGet)

	secured.HandleFunc(routes.Registrations, regsController.CreateRegistrationHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.MyRoom, regsController.MyRoomHandler).Methods(http.MethodGet)

	secured.HandleFunc(routes.Swaps, swapsController.CreateSwapHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Swaps, swapsController.ListSwapsHandler).Methods(http.MethodGet)

	secured.HandleFunc(routes.Invoices, invoicesController.ListInvoicesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Invoice, invoicesController.GetInvoiceHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.InvoiceDetails, invoicesController.ListInvoiceDetailsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.InvoicePay, paymentsController.PayInvoiceHandler).Methods(http.MethodPatch)

	secured.HandleFunc(routes.Devices, notifController.RegisterDeviceHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Notifications, notifController.ListNotificationsHandler).Methods(http.MethodGet)

	admin := router.NewRoute().Subrouter()
	admin.Use(middleware.AuthMiddleware(cfg.RSAPublicKey), middleware.AdminOnly)

	admin.HandleFunc(routes.Registrations, regsController.ListRegistrationsHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.SwapApprove, swapsController.ApproveSwapHandler).Methods(http.MethodPatch)
	admin.HandleFunc(routes.Invoices, invoicesController.CreateInvoiceHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.InvoiceDetails, invoicesController.AddInvoiceDetailHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.Notifications, notifController.CreateNotificationHandler).Methods(http.MethodPost)

	c := cron.New()
	_, cronErr := c.AddFunc(constants.ReminderCronSpec, func() {
		if e := reminderService.RunDailyReminderCheck(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled invoice reminder sweep failed")
		}
	})
	if cronErr != nil {
		utils.Logger.WithError(cronErr).Fatal("Failed to schedule invoice reminder cron")
	}
	c.Start()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000")
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("dorms-service failed to start:", err)
	}
}
