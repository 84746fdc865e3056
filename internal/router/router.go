package router

import (
	"github.com/foodmarket/provision-backend/config"
	"github.com/foodmarket/provision-backend/internal/app/controller"
	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController      *controller.AuthController
	sessionController   *controller.SessionController
	customerController  *controller.CustomerController
	productController   *controller.ProductController
	provisionController *controller.ProvisionController
	statsController     *controller.StatsController
	archiveController   *controller.ArchiveController
	authMiddleware      *middleware.AuthMiddleware
	config              *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	sessionController *controller.SessionController,
	customerController *controller.CustomerController,
	productController *controller.ProductController,
	provisionController *controller.ProvisionController,
	statsController *controller.StatsController,
	archiveController *controller.ArchiveController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:      authController,
		sessionController:   sessionController,
		customerController:  customerController,
		productController:   productController,
		provisionController: provisionController,
		statsController:     statsController,
		archiveController:   archiveController,
		authMiddleware:      authMiddleware,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Food market provisioning API is running",
		})
	})

	authenticate := r.authMiddleware.Authenticate()
	adminOnly := r.authMiddleware.RequireRole(model.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.Refresh)
			auth.GET("/me", authenticate, r.authController.GetMe)
		}

		admin := v1.Group("/admin")
		admin.Use(authenticate, adminOnly)
		{
			admin.GET("/staff", r.authController.ListStaff)
			admin.POST("/staff/:id/approve", r.authController.ApproveStaff)
			admin.POST("/reports/archive", r.archiveController.ArchiveQuarter)
		}

		session := v1.Group("/session")
		session.Use(authenticate)
		{
			session.GET("", r.sessionController.GetView)
			session.GET("/ws", r.sessionController.WebSocketHandler)

			session.POST("/search", r.sessionController.Search)
			session.POST("/search/move", r.sessionController.MoveSelection)
			session.POST("/search/select", r.sessionController.SelectCandidate)
			session.POST("/search/confirm", r.sessionController.ConfirmCandidate)
			session.POST("/search/cancel", r.sessionController.CancelSearch)

			session.POST("/visitors/:id/activate", r.sessionController.ActivateVisitor)
			session.DELETE("/visitors/:id", r.sessionController.RemoveVisitor)

			session.POST("/cart/items", r.sessionController.AddItem)
			session.PUT("/cart/items/:index", r.sessionController.SetQuantity)
			session.POST("/cart/items/:index/increment", r.sessionController.IncrementItem)
			session.POST("/cart/items/:index/decrement", r.sessionController.DecrementItem)
			session.DELETE("/cart/items/:index", r.sessionController.RemoveItem)
			session.POST("/cart/undo", r.sessionController.Undo)
			session.POST("/cart/redo", r.sessionController.Redo)

			session.POST("/hold", r.sessionController.Hold)
			session.POST("/hold/load", r.sessionController.LoadHold)
			session.POST("/submit", r.sessionController.Submit)
			session.POST("/reset", r.sessionController.Reset)
		}

		customers := v1.Group("/customers")
		customers.Use(authenticate)
		{
			customers.GET("", r.customerController.ListCustomers)
			customers.GET("/:id", r.customerController.GetCustomer)
			customers.POST("", r.customerController.CreateCustomer)
			customers.PUT("/:id", r.customerController.UpdateCustomer)
			customers.DELETE("/:id", adminOnly, r.customerController.DeleteCustomer)
		}

		products := v1.Group("/products")
		products.Use(authenticate)
		{
			products.GET("", r.productController.GetAllProducts)
			products.GET("/:id", r.productController.GetProductByID)
			products.POST("", adminOnly, r.productController.CreateProduct)
			products.PUT("/:id", adminOnly, r.productController.UpdateProduct)
			products.DELETE("/:id", adminOnly, r.productController.DeleteProduct)
		}

		provisions := v1.Group("/provisions")
		provisions.Use(authenticate)
		{
			provisions.GET("", r.provisionController.ListProvisions)
			provisions.GET("/:id", r.provisionController.GetProvision)
		}

		stats := v1.Group("/stats")
		stats.Use(authenticate)
		{
			stats.GET("/visits", r.statsController.GetVisitStats)
			stats.GET("/lifelove", r.statsController.GetLifeLoveStats)
			stats.GET("/daily", r.statsController.GetDailyCounts)
			stats.GET("/export", r.statsController.ExportQuarter)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, X-Request-ID, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
