// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"tickethub/internal/bookings"
	"tickethub/internal/checkin"
	"tickethub/internal/discounts"
	"tickethub/internal/events"
	"tickethub/internal/notifications"
	"tickethub/internal/payments"
	"tickethub/internal/shared/authz"
	"tickethub/internal/shared/config"
	"tickethub/internal/shared/database"
	"tickethub/internal/tickettypes"
	"tickethub/internal/transfers"
	"tickethub/pkg/cache"
	"tickethub/pkg/logger"
	"tickethub/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher notifications.Publisher
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, publisher notifications.Publisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	// Prometheus scrape endpoint
	engine.GET("/metrics", metrics.Handler())

	// Swagger UI
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Rendered QR credentials are served as static files
	engine.Static(r.config.QR.BaseURL, r.config.QR.OutputDir)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupDomainRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "tickethub-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "tickethub-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupDomainRoutes wires every domain in dependency order. Inventory and
// discounts are built first because the booking repository reserves and
// redeems inside the same transaction; the credential issuer and the
// availability cache hang off the booking service afterwards.
func (r *Router) setupDomainRoutes(rg *gin.RouterGroup) {
	appLogger := logger.GetDefault()
	pg := r.db.GetPostgreSQL()

	eventRepo := events.NewRepository(pg)
	authorizer := authz.New(eventRepo)
	cacheService := cache.NewService(r.db.GetRedisClient())

	eventService := events.NewService(eventRepo, cacheService)
	eventController := events.NewController(eventService)
	events.SetupEventRoutes(rg, eventController)

	ticketTypeRepo := tickettypes.NewRepository(pg)
	ticketTypeService := tickettypes.NewService(ticketTypeRepo, eventRepo, cacheService)
	ticketTypeController := tickettypes.NewController(ticketTypeService)
	tickettypes.SetupTicketTypeRoutes(rg, ticketTypeController)

	discountRepo := discounts.NewRepository(pg)
	discountService := discounts.NewService(discountRepo, eventRepo, authorizer)
	discountController := discounts.NewController(discountService)
	discounts.SetupDiscountRoutes(rg, discountController)

	bookingRepo := bookings.NewRepository(pg, ticketTypeRepo, discountRepo)
	issuer := checkin.NewIssuer(r.config.QR)

	bookingService := bookings.NewService(bookings.ServiceDeps{
		Repo:           bookingRepo,
		EventRepo:      eventRepo,
		TicketTypeRepo: ticketTypeRepo,
		DiscountRepo:   discountRepo,
		Availability:   ticketTypeService,
		Credentials:    issuer,
		Publisher:      r.publisher,
		Authorizer:     authorizer,
		Logger:         appLogger,
	})
	bookingController := bookings.NewController(bookingService)
	bookings.SetupBookingRoutes(rg, bookingController)

	checkInService := checkin.NewService(bookingRepo, issuer, authorizer, r.publisher, appLogger)
	checkInController := checkin.NewController(checkInService)
	checkin.SetupCheckInRoutes(rg, checkInController)

	transferService := transfers.NewService(bookingRepo, r.publisher, r.config.Booking.TransferTTL, appLogger)
	transferController := transfers.NewController(transferService)
	transfers.SetupTransferRoutes(rg, transferController)

	paymentController := payments.NewController(bookingService, appLogger)
	provider := payments.NewMockProvider(bookingService)
	payments.SetupPaymentRoutes(rg, paymentController, provider, r.config.IsDevelopment())
}
