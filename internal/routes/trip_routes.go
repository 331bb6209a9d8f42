package routes

import (
	"github.com/gin-gonic/gin"

	"fleet_tracker/internal/controllers"
)

func TripRoutes(api *gin.RouterGroup, trips *controllers.TripController, drivers *controllers.DriverController) {
	t := api.Group("/trips")
	{
		t.POST("", trips.CreateTrip)
		t.GET("", trips.ListTrips)
		t.PUT("/assign", trips.AssignDriver)
		t.POST("/start", trips.StartTrip)
		t.POST("/complete", trips.CompleteTrip)
		t.GET("/active-with-routes", trips.ActiveWithRoutes)
	}

	api.GET("/drivers/available", drivers.AvailableDrivers)
}
