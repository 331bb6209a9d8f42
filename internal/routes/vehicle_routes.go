package routes

import (
	"github.com/gin-gonic/gin"

	"fleet_tracker/internal/controllers"
)

func VehicleRoutes(api *gin.RouterGroup, vehicles *controllers.VehicleController) {
	v := api.Group("/vehicles")
	{
		v.POST("", vehicles.CreateVehicle)
		v.GET("", vehicles.ListVehicles)
		v.DELETE("/:id", vehicles.DeleteVehicle)
	}
}
