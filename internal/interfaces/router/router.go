package router

import (
	engsvc "farmgate-backend/internal/application/engagement"
	listsvc "farmgate-backend/internal/application/listings"
	"farmgate-backend/internal/config"
	"farmgate-backend/internal/domain"
	"farmgate-backend/internal/geo"
	"farmgate-backend/internal/infrastructure/database"
	enghandler "farmgate-backend/internal/interfaces/handlers/engagement"
	healthhandler "farmgate-backend/internal/interfaces/handlers/health"
	listhandler "farmgate-backend/internal/interfaces/handlers/listings"
	"farmgate-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with all global middleware and route
// registration, and returns the DB and Redis handles for startup checks and
// the sweeper.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionHandler, rdb, err := middleware.Session(middleware.SessionConfig{
		Secret:   cfg.SessionSecret,
		RedisURL: cfg.RedisURL,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/reset", hh.Reset)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		if errDB = database.AutoMigrate(db); errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	if db != nil {
		fuzzer := geo.NewFuzzer(geo.Config{RadiusMeters: map[domain.FuzzingLevel]float64{
			domain.FuzzLow:    cfg.FuzzRadiusLowM,
			domain.FuzzMedium: cfg.FuzzRadiusMediumM,
			domain.FuzzHigh:   cfg.FuzzRadiusHighM,
		}}, nil, nil)

		listingsService := &listsvc.Service{
			DB:               db,
			Fuzzer:           fuzzer,
			PeriodDays:       cfg.ListingPeriodDays,
			NotifyWindowDays: cfg.NotifyWindowDays,
		}
		listingsHandlers := &listhandler.Handlers{Service: listingsService}
		listingsGroup := app.Group("/api/v1/listings", middleware.RequireAuth())
		listingsGroup.Post("/create-listing", listingsHandlers.CreateListing)
		listingsGroup.Get("/search", listingsHandlers.Search)
		listingsGroup.Get("/get-listing/:listing_id", listingsHandlers.GetListing)
		listingsGroup.Get("/get-seller-listings", listingsHandlers.GetSellerListings)
		listingsGroup.Get("/expiring-soon", listingsHandlers.ExpiringSoon)
		listingsGroup.Get("/prefill-from-batch/:batch_id", listingsHandlers.PrefillFromBatch)
		listingsGroup.Patch("/change-status", listingsHandlers.ChangeStatus)
		listingsGroup.Delete("/delete-listing/:listing_id", listingsHandlers.DeleteListing)

		engagementService := &engsvc.Service{DB: db}
		engagementHandlers := &enghandler.Handlers{Service: engagementService}
		engagementGroup := app.Group("/api/v1/engagement", middleware.RequireAuth())
		engagementGroup.Post("/record-view", engagementHandlers.RecordView)
		engagementGroup.Post("/contact-seller", engagementHandlers.ContactSeller)
		engagementGroup.Get("/state/:listing_id", engagementHandlers.State)
	}

	return app, db, rdb, nil
}
