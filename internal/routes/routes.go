package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"fleet_tracker/internal/controllers"
)

// Controllers bundles everything the router needs. Wiring happens in main;
// nothing here reaches for globals.
type Controllers struct {
	Auth     *controllers.AuthController
	Trips    *controllers.TripController
	Drivers  *controllers.DriverController
	Vehicles *controllers.VehicleController
	Stops    *controllers.StopController
	Messages *controllers.MessageController
}

func SetupRouter(ctl Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Request logging middleware
	r.Use(ginlog.SetLogger())

	api := r.Group("/api")
	AuthRoutes(api, ctl.Auth)
	TripRoutes(api, ctl.Trips, ctl.Drivers)
	DriverRoutes(api, ctl.Drivers)
	VehicleRoutes(api, ctl.Vehicles)
	StopRoutes(api, ctl.Stops)
	MessageRoutes(api, ctl.Messages)

	return r
}
