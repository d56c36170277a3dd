// internal/router/router.go
package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/averbacoes/backoffice/internal/apiclient"
	"github.com/averbacoes/backoffice/internal/config"
	"github.com/averbacoes/backoffice/internal/handlers"
	"github.com/averbacoes/backoffice/internal/middleware"
	"github.com/averbacoes/backoffice/internal/models"
	"github.com/averbacoes/backoffice/internal/services"
)

// Initialize wires services, handlers and routes. db may be nil when
// sessions are kept in memory; audit logs are then only written to the log.
func Initialize(db *gorm.DB, cfg *config.Config, api *apiclient.Client, sessions *services.SessionManager) (*gin.Engine, error) {
	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	averbacaoService := services.NewAverbacaoService(api, services.NewListTracker())
	documentService := services.NewDocumentService(api, storageService, cfg)
	lookupService := services.NewLookupService(api)
	adminService := services.NewPermissionAdminService(api)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(sessions, averbacaoService)
	averbacaoHandler := handlers.NewAverbacaoHandler(averbacaoService)
	documentoHandler := handlers.NewDocumentoHandler(documentService)
	lookupHandler := handlers.NewLookupHandler(lookupService)
	permissaoHandler := handlers.NewPermissaoHandler(adminService)

	limits := middleware.NewRateLimits(cfg.RateLimit)
	submitGuard := middleware.NewSubmitGuard()

	r := gin.New()
	r.MaxMultipartMemory = 32 << 20

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(limits.General.Middleware())
	r.Use(middleware.AuditLogMiddleware(db))

	r.GET("/health", handlers.Health(db))

	authRequired := middleware.SessionRequired(sessions)
	can := middleware.RequirePermission

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		{
			auth.POST("/login", limits.Auth.Middleware(), authHandler.Login)
			auth.POST("/logout", authRequired, authHandler.Logout)
			auth.GET("/me", authRequired, authHandler.Me)
		}

		protected := v1.Group("")
		protected.Use(authRequired, submitGuard.Middleware())

		// Averbação routes
		averbacoes := protected.Group("/averbacoes")
		{
			averbacoes.GET("", can(models.ModuloAverbacoes, models.AcaoRead), averbacaoHandler.List)
			averbacoes.POST("", can(models.ModuloAverbacoes, models.AcaoCreate), averbacaoHandler.Create)
			averbacoes.GET("/:id", can(models.ModuloAverbacoes, models.AcaoRead), averbacaoHandler.Get)
			averbacoes.PATCH("/:id", can(models.ModuloAverbacoes, models.AcaoUpdate), averbacaoHandler.Update)
			averbacoes.DELETE("/:id", can(models.ModuloAverbacoes, models.AcaoDelete), averbacaoHandler.Delete)
			averbacoes.GET("/:id/drawer", can(models.ModuloAverbacoes, models.AcaoRead), averbacaoHandler.Drawer)

			// Document routes
			averbacoes.GET("/:id/documentos", can(models.ModuloAverbacoes, models.AcaoRead), documentoHandler.List)
			averbacoes.POST("/:id/documentos", limits.Upload.Middleware(), can(models.ModuloAverbacoes, models.AcaoUpdate), documentoHandler.Upload)
			averbacoes.DELETE("/:id/documentos/:docId", can(models.ModuloAverbacoes, models.AcaoUpdate), documentoHandler.Delete)
			averbacoes.GET("/:id/documentos/:docId/download", can(models.ModuloAverbacoes, models.AcaoRead), documentoHandler.Download)
		}

		// Form option lists
		lookups := protected.Group("/lookups")
		{
			lookups.GET("/clientes", lookupHandler.Clientes)
			lookups.GET("/seguradoras", lookupHandler.Seguradoras)
			lookups.GET("/container-tipos", lookupHandler.ContainerTipos)
			lookups.GET("/containers", lookupHandler.Containers)
			lookups.GET("/container-trips", lookupHandler.ContainerTrips)
		}

		// Profile permission administration
		protected.GET("/permissoes", can(models.ModuloPermissoes, models.AcaoRead), permissaoHandler.Catalog)
		perfis := protected.Group("/perfis")
		{
			perfis.GET("/:id/permissoes", can(models.ModuloPermissoes, models.AcaoRead), permissaoHandler.ForPerfil)
			perfis.PUT("/:id/permissoes/sync", can(models.ModuloPermissoes, models.AcaoManage), permissaoHandler.Sync)
		}
	}

	return r, nil
}
