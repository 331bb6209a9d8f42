package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fleet_tracker/internal/repository"
	"fleet_tracker/internal/services"
)

type TripController struct {
	dispatch *services.DispatchService
	trips    repository.TripRepository
}

func NewTripController(dispatch *services.DispatchService, trips repository.TripRepository) *TripController {
	return &TripController{dispatch: dispatch, trips: trips}
}

type createTripInput struct {
	Details string   `json:"details" binding:"required"`
	Stops   []string `json:"stops" binding:"required"`
}

func (tc *TripController) CreateTrip(c *gin.Context) {
	var input createTripInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	stopIDs := make([]primitive.ObjectID, 0, len(input.Stops))
	for _, raw := range input.Stops {
		id, ok := parseID(c, raw)
		if !ok {
			return
		}
		stopIDs = append(stopIDs, id)
	}

	trip, err := tc.dispatch.CreateTrip(c.Request.Context(), input.Details, stopIDs)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "trip created", "trip": trip})
}

func (tc *TripController) ListTrips(c *gin.Context) {
	trips, err := tc.trips.List(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("ListTrips: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not list trips"})
		return
	}
	c.JSON(http.StatusOK, trips)
}

type assignInput struct {
	TripID   string `json:"tripId" binding:"required"`
	DriverID string `json:"driverId" binding:"required"`
}

func (tc *TripController) AssignDriver(c *gin.Context) {
	var input assignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	tripID, ok := parseID(c, input.TripID)
	if !ok {
		return
	}
	driverID, ok := parseID(c, input.DriverID)
	if !ok {
		return
	}

	trip, err := tc.dispatch.AssignDriver(c.Request.Context(), tripID, driverID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "driver assigned", "trip": trip})
}

func (tc *TripController) StartTrip(c *gin.Context) {
	var input struct {
		TripID string `json:"tripId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	tripID, ok := parseID(c, input.TripID)
	if !ok {
		return
	}

	trip, err := tc.dispatch.StartTrip(c.Request.Context(), tripID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "trip started", "trip": trip})
}

func (tc *TripController) CompleteTrip(c *gin.Context) {
	var input struct {
		TripID string `json:"tripId" binding:"required"`
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	tripID, ok := parseID(c, input.TripID)
	if !ok {
		return
	}
	driverID, ok := parseID(c, input.UserID)
	if !ok {
		return
	}

	if err := tc.dispatch.CompleteTrip(c.Request.Context(), tripID, driverID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "trip completed"})
}

// ActiveWithRoutes returns every active trip with its driver's last known
// location, for the live dispatch map.
func (tc *TripController) ActiveWithRoutes(c *gin.Context) {
	trips, err := tc.dispatch.ActiveTripsWithLocations(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("ActiveWithRoutes: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not load active trips"})
		return
	}
	c.JSON(http.StatusOK, trips)
}
