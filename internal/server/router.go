package server

import (
	"net/http"

	"propdesk/internal/authn"
	"propdesk/internal/config"
	"propdesk/internal/handlers"
	"propdesk/internal/middleware"
	"propdesk/internal/models"
	"propdesk/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// Deps is everything the route table needs; main wires it once.
type Deps struct {
	Profiles *services.ProfileService
	Verifier *authn.Verifier

	Auth        *handlers.AuthHandler
	JobActivity *handlers.JobActivityHandler
	Jobs        *handlers.JobsHandler
	Keys        *handlers.KeysHandler
	Properties  *handlers.PropertiesHandler
	Invoices    *handlers.InvoicesHandler
	Uploads     *handlers.UploadsHandler
	ProfileOps  *handlers.ProfilesHandler
	Audit       *handlers.AuditHandler
}

func NewRouter(cfg *config.Config, d Deps) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("propdesk_session", store))

	r.Use(middleware.InjectProfile(d.Profiles, d.Verifier))

	// AUTH
	r.POST("/auth/login", d.Auth.Login)
	r.POST("/auth/callback", d.Auth.Callback)
	r.GET("/auth/logout", d.Auth.Logout)

	// PAYMENT WEBHOOK (signature-verified, no session)
	r.POST("/webhooks/payment", d.Invoices.PaymentWebhook)

	// uploaded files are public by URL
	r.Static(cfg.StorageBaseURL, cfg.StorageRoot)

	auth := r.Group("/")
	auth.Use(middleware.RequireAuth())

	auth.GET("/me", d.Auth.Me)

	// JOB TIMER
	auth.POST("/job-activity/start", d.JobActivity.Start)
	auth.POST("/job-activity/stop", d.JobActivity.Stop)
	auth.GET("/job-activity/last-duration", d.JobActivity.LastDuration)

	// JOBS
	auth.POST("/jobs", d.Jobs.Create)
	auth.GET("/jobs", d.Jobs.List)
	auth.GET("/jobs/:id", d.Jobs.Get)
	auth.PATCH("/jobs/:id", d.Jobs.Update)
	auth.DELETE("/jobs/:id",
		middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin),
		d.Jobs.Delete,
	)

	// KEYS
	auth.POST("/keys",
		middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin, models.RoleStaff),
		d.Keys.Create,
	)
	auth.GET("/keys", d.Keys.List)
	auth.POST("/keys/:key/checkout", d.Keys.Checkout)
	auth.POST("/keys/:key/checkin", d.Keys.Checkin)
	auth.POST("/keys/:key/missing", d.Keys.ReportMissing)
	auth.GET("/keys/:key/custody", d.Keys.CustodyHistory)

	// PROPERTIES
	auth.GET("/properties", d.Properties.List)
	auth.POST("/properties",
		middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin, models.RoleStaff),
		d.Properties.Create,
	)
	auth.POST("/properties/:id/units",
		middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin, models.RoleStaff),
		d.Properties.CreateUnit,
	)

	// INVOICES
	auth.GET("/invoices", d.Invoices.List)
	auth.POST("/invoices",
		middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin, models.RoleStaff),
		d.Invoices.Create,
	)
	auth.POST("/invoices/:id/pay", d.Invoices.Pay)

	// UPLOADS
	auth.POST("/uploads", d.Uploads.Upload)

	// PROFILE ADMIN
	auth.POST("/profiles/:id/role",
		middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin),
		d.ProfileOps.ChangeRole,
	)
	auth.POST("/profiles/:id/company",
		middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin),
		d.ProfileOps.MoveCompany,
	)
	auth.POST("/profiles/:id/disable",
		middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin),
		d.ProfileOps.Disable,
	)

	// AUDIT
	auth.GET("/audit",
		middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin),
		d.Audit.List,
	)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
