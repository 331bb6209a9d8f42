package routes

import (
	"github.com/gin-gonic/gin"

	"fleet_tracker/internal/controllers"
)

func DriverRoutes(api *gin.RouterGroup, drivers *controllers.DriverController) {
	d := api.Group("/driver")
	{
		d.PUT("/location", drivers.UpdateLocation)
		d.GET("/trip/:userId", drivers.ActiveTrip)
	}
}
