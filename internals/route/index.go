package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"colegio_backend/internals/configs"
	notifService "colegio_backend/internals/features/communication/notifications/service"
	paymentService "colegio_backend/internals/features/finance/payments/service"
	authService "colegio_backend/internals/features/users/auth/service"
	helperAuth "colegio_backend/internals/helpers/auth"
	"colegio_backend/internals/helpers/mailer"
	"colegio_backend/internals/helpers/storage"
	authMw "colegio_backend/internals/middlewares/auth"
	routeDetails "colegio_backend/internals/route/details"
)

var startTime time.Time

// SetupRoutes builds every shared service once and mounts all feature routes under /api.
func SetupRoutes(app *fiber.App, db *gorm.DB, cfg configs.Config, bl *helperAuth.Blacklist) {
	startTime = time.Now()

	BaseRoutes(app, db)

	store, err := storage.NewServiceFromEnv(cfg.StorageDriver, "colegio")
	if err != nil {
		log.Printf("[WARN] almacenamiento deshabilitado: %v", err)
		store = nil
	}

	d := routeDetails.Deps{
		Config:   cfg,
		Auth:     authService.New(db, cfg.JWTSecret, cfg.JWTTTL, bl, cfg.GoogleClientID),
		Notifier: notifService.New(db, mailer.New(cfg), cfg.FrontendURL),
		Storage:  store,
		Gateway:  paymentService.NewGateway(cfg.MidtransServerKey, cfg.MidtransUseProd),
	}

	// ===================== PUBLIC =====================
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api")
	routeDetails.AuthPublicRoutes(public, d)
	routeDetails.FinancePublicRoutes(public, db, d)

	// ===================== PRIVATE =====================
	// Same prefix as public: fiber runs handlers in registration order, so every
	// public route must be mounted above this group.
	log.Println("[INFO] Setting up PRIVATE group (AuthJWT)...")
	private := app.Group("/api",
		authMw.AuthJWT(authMw.AuthJWTOpts{
			Secret:              cfg.JWTSecret,
			Blacklist:           bl,
			AllowCookieFallback: true,
			IsActive:            d.Auth.IsActive,
		}),
	)

	log.Println("[INFO] Mounting Auth routes...")
	routeDetails.AuthPrivateRoutes(private, d)

	log.Println("[INFO] Mounting School routes...")
	routeDetails.SchoolRoutes(private, db, d)

	log.Println("[INFO] Mounting Academic routes...")
	routeDetails.AcademicRoutes(private, db, d)

	log.Println("[INFO] Mounting Finance routes...")
	routeDetails.FinanceRoutes(private, db, d)

	log.Println("[INFO] Mounting Communication routes...")
	routeDetails.CommunicationRoutes(private, db, d)

	log.Println("[INFO] All routes mounted")
}
