// server/internal/api/routes/routes.go
package routes

import (
	"delivery-ops-api-server/config"
	"delivery-ops-api-server/internal/api/handlers"
	"delivery-ops-api-server/internal/api/middleware"
	"delivery-ops-api-server/internal/models"
	"delivery-ops-api-server/internal/socket"
	"delivery-ops-api-server/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter wires handlers, middleware and the route table.
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	media storage.MediaStore,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	jwtSecret := []byte(cfg.JWT.Secret)

	authHandler := &handlers.AuthHandler{DB: db, Cfg: cfg}
	driverHandler := &handlers.DriverHandler{DB: db, Cfg: cfg}
	deliveryHandler := &handlers.DeliveryHandler{DB: db}
	proofHandler := &handlers.ProofHandler{DB: db, Media: media}
	locationHandler := &handlers.LocationHandler{DB: db, Hub: wsHub}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub, JWTSecret: jwtSecret}

	// POD media served statically when the local storage driver is active.
	if cfg.Storage.Driver != "s3" {
		router.Static("/uploads", cfg.Storage.LocalDir)
	}

	api := router.Group("/api")
	{
		// Live location feed for dispatch dashboards.
		api.GET("/ws", webSocketHandler.ServeWs)

		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/driver-login", authHandler.DriverLogin)

			auth.POST("/create",
				middleware.Authenticate(jwtSecret),
				middleware.Authorize(models.RoleSuperAdmin),
				authHandler.CreateAdmin)
			auth.GET("/me",
				middleware.Authenticate(jwtSecret),
				authHandler.Me)
		}

		// Driver management, admin and superadmin only.
		drivers := api.Group("/drivers")
		drivers.Use(middleware.Authenticate(jwtSecret))
		drivers.Use(middleware.Authorize(models.RoleAdmin, models.RoleSuperAdmin))
		{
			drivers.POST("", driverHandler.CreateDriver)
			drivers.GET("", driverHandler.GetDrivers)
			drivers.GET("/:id", driverHandler.GetDriverByID)
			drivers.PUT("/:id", driverHandler.UpdateDriver)
			drivers.DELETE("/:id", driverHandler.DeleteDriver)
		}

		deliveries := api.Group("/deliveries")
		deliveries.Use(middleware.Authenticate(jwtSecret))
		{
			adminOnly := middleware.Authorize(models.RoleAdmin, models.RoleSuperAdmin)

			deliveries.POST("", adminOnly, deliveryHandler.CreateDelivery)
			deliveries.GET("", adminOnly, deliveryHandler.GetDeliveries)
			deliveries.GET("/:id", deliveryHandler.GetDeliveryByID)
			deliveries.PUT("/:id", adminOnly, deliveryHandler.UpdateDelivery)
			deliveries.PATCH("/:id/assign", adminOnly, deliveryHandler.AssignDriver)
			deliveries.POST("/:id/complete", deliveryHandler.MarkCompleted)
			deliveries.POST("/:id/approve", adminOnly, deliveryHandler.ApproveDelivery)
			deliveries.DELETE("/:id", adminOnly, deliveryHandler.DeleteDelivery)

			deliveries.POST("/:id/proof-of-delivery", proofHandler.UploadProofOfDelivery)
			deliveries.GET("/:id/proof-of-delivery", proofHandler.GetProofOfDelivery)
		}

		locations := api.Group("/locations")
		locations.Use(middleware.Authenticate(jwtSecret))
		{
			locations.POST("",
				middleware.Authorize(models.RoleDriver),
				locationHandler.IngestLocation)
			locations.GET("",
				middleware.Authorize(models.RoleAdmin, models.RoleSuperAdmin),
				locationHandler.GetAllLocations)
			locations.GET("/:driverId",
				middleware.Authorize(models.RoleAdmin, models.RoleSuperAdmin),
				locationHandler.GetLocationByDriver)
		}
	}

	return router
}
