package routes

import (
	"github.com/gin-gonic/gin"

	"fleet_tracker/internal/controllers"
)

func StopRoutes(api *gin.RouterGroup, stops *controllers.StopController) {
	s := api.Group("/stops")
	{
		s.POST("", stops.CreateStop)
		s.GET("", stops.ListStops)
		s.DELETE("/:id", stops.DeleteStop)
	}
}
