package http

import (
	"github.com/aureliov/medicall/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(auth *service.AuthService, callController *CallController, telemedicineController *TelemedicineController) *gin.Engine {
	router := gin.Default()

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"Origin",
		"Accept",
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	router.Use(cors.New(config))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	if callController != nil {
		api.GET("/call/ws", callController.Connect)
	}

	if telemedicineController != nil {
		telemedicine := api.Group("/telemedicine", AuthMiddleware(auth))
		telemedicine.GET("/ice-servers", telemedicineController.GetICEServers)
		telemedicine.GET("/appointments", telemedicineController.ListAppointments)
		telemedicine.GET("/appointments/:appointmentId/messages", telemedicineController.GetMessages)
		telemedicine.POST("/appointments/:appointmentId/messages", telemedicineController.CreateMessage)
	}

	return router
}
