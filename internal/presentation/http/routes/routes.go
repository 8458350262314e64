package routes

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sangkips/dentalbill-api/internal/config"
	"github.com/sangkips/dentalbill-api/internal/domain/entity"
	domainRepo "github.com/sangkips/dentalbill-api/internal/domain/repository"
	"github.com/sangkips/dentalbill-api/internal/presentation/http/handler"
	"github.com/sangkips/dentalbill-api/internal/presentation/http/middleware"
	"github.com/sangkips/dentalbill-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Patient     *handler.PatientHandler
	Doctor      *handler.DoctorHandler
	FeeSchedule *handler.FeeScheduleHandler
	Receipt     *handler.ReceiptHandler
	Report      *handler.ReportHandler
	Print       *handler.PrintHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Logger          zerolog.Logger
	IdempotencyRepo domainRepo.IdempotencyRepository
	// RateLimiter is optional; nil disables rate limiting
	RateLimiter *middleware.UserRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required), limited per client IP
		registerAuthRoutes(v1, h, deps)

		// Protected routes (authentication required), limited per user
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	auth := v1.Group("/auth")
	if deps.RateLimiter != nil {
		auth.Use(deps.RateLimiter.Middleware())
	}
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.GET("/google", h.Auth.GoogleRedirect)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Auth/Profile routes
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	registerUserRoutes(protected, h)
	registerPatientRoutes(protected, h)
	registerDoctorRoutes(protected, h)
	registerFeeScheduleRoutes(protected, h)
	registerReceiptRoutes(protected, h, deps)
	registerReportRoutes(protected, h)
}

func registerUserRoutes(protected *gin.RouterGroup, h *Handlers) {
	users := protected.Group("/users")
	users.Use(middleware.RequirePermission(entity.PermManageUsers))
	{
		users.GET("", h.User.List)
		users.POST("", h.User.Create)
		users.GET("/:id", h.User.Get)
		users.PUT("/:id/roles", h.User.UpdateRoles)
	}

	protected.GET("/roles", middleware.RequirePermission(entity.PermManageUsers), h.User.ListRoles)
}

func registerPatientRoutes(protected *gin.RouterGroup, h *Handlers) {
	patients := protected.Group("/patients")
	patients.Use(middleware.RequirePermission(entity.PermManagePatients))
	{
		patients.GET("", h.Patient.List)
		patients.POST("", h.Patient.Create)
		patients.GET("/:id", h.Patient.Get)
		patients.PUT("/:id", h.Patient.Update)
		patients.DELETE("/:id", h.Patient.Delete)
	}
}

func registerDoctorRoutes(protected *gin.RouterGroup, h *Handlers) {
	doctors := protected.Group("/doctors")
	doctors.Use(middleware.RequirePermission(entity.PermManageCatalog))
	{
		doctors.GET("", h.Doctor.List)
		doctors.POST("", h.Doctor.Create)
		doctors.GET("/:id", h.Doctor.Get)
		doctors.PUT("/:id", h.Doctor.Update)
		doctors.DELETE("/:id", h.Doctor.Delete)
	}
}

func registerFeeScheduleRoutes(protected *gin.RouterGroup, h *Handlers) {
	services := protected.Group("/services")
	services.Use(middleware.RequirePermission(entity.PermManageCatalog))
	{
		services.GET("", h.FeeSchedule.ListServices)
		services.POST("", h.FeeSchedule.CreateService)
		services.PUT("/:id", h.FeeSchedule.UpdateService)
		services.DELETE("/:id", h.FeeSchedule.DeleteService)
	}

	fees := protected.Group("/payment-fees")
	fees.Use(middleware.RequirePermission(entity.PermManageFees))
	{
		fees.GET("", h.FeeSchedule.ListPaymentFees)
		fees.PUT("/:method", h.FeeSchedule.UpdatePaymentFee)
	}

	settings := protected.Group("/billing-settings")
	settings.Use(middleware.RequirePermission(entity.PermManageFees))
	{
		settings.GET("", h.FeeSchedule.GetBillingSettings)
		settings.PUT("", h.FeeSchedule.UpdateBillingSettings)
	}
}

func registerReceiptRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	receipts := protected.Group("/receipts")
	receipts.Use(middleware.RequirePermission(entity.PermManageReceipts))
	{
		receipts.POST("/preview", h.Receipt.Preview)
		receipts.GET("", h.Receipt.List)
		receipts.POST("", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:   deps.IdempotencyRepo,
			Logger: deps.Logger,
		}), h.Receipt.Create)
		receipts.GET("/:id", h.Receipt.Get)
		receipts.PUT("/:id", h.Receipt.Update)
		receipts.POST("/:id/void", h.Receipt.Void)
		receipts.POST("/:id/print", h.Print.PrintReceipt)
	}

	protected.GET("/printer/status", middleware.RequirePermission(entity.PermManageReceipts, entity.PermManageCatalog), h.Print.Status)
}

func registerReportRoutes(protected *gin.RouterGroup, h *Handlers) {
	reports := protected.Group("/reports")
	reports.Use(middleware.RequirePermission(entity.PermViewReports))
	{
		reports.GET("/revenue", h.Report.Revenue)
		reports.GET("/receipts/export", gzip.Gzip(gzip.DefaultCompression), h.Report.Export)
	}
}
