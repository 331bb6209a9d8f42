package main

import (
	"log"
	"net/http"

	"fleet_tracker/internal/config"
	"fleet_tracker/internal/controllers"
	"fleet_tracker/internal/logger"
	"fleet_tracker/internal/middleware"
	"fleet_tracker/internal/repository/mongodb"
	"fleet_tracker/internal/routes"
	"fleet_tracker/internal/services"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	db := config.InitDB()

	users := mongodb.NewUserRepository(db)
	trips := mongodb.NewTripRepository(db)
	stops := mongodb.NewStopRepository(db)
	vehicles := mongodb.NewVehicleRepository(db)
	messages := mongodb.NewMessageRepository(db)

	dispatch := services.NewDispatchService(users, trips, stops)

	ctl := routes.Controllers{
		Auth:     controllers.NewAuthController(users),
		Trips:    controllers.NewTripController(dispatch, trips),
		Drivers:  controllers.NewDriverController(dispatch),
		Vehicles: controllers.NewVehicleController(vehicles),
		Stops:    controllers.NewStopController(stops),
		Messages: controllers.NewMessageController(messages, users),
	}

	ctl.Auth.EnsureAdminExists(config.GetEnv("ADMIN_USERNAME", "admin"))

	r := routes.SetupRouter(ctl)

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	port := config.GetEnv("PORT", "8080")
	log.Println("🚀 Server running at :" + port)
	log.Fatal(http.ListenAndServe("0.0.0.0:"+port, handler))
}
