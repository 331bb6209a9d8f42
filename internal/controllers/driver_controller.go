package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"fleet_tracker/internal/models"
	"fleet_tracker/internal/services"
)

type DriverController struct {
	dispatch *services.DispatchService
}

func NewDriverController(dispatch *services.DispatchService) *DriverController {
	return &DriverController{dispatch: dispatch}
}

type locationInput struct {
	UserID   string           `json:"userId" binding:"required"`
	Location *models.GeoPoint `json:"location" binding:"required"`
}

// UpdateLocation overwrites the driver's last known point. The driver app
// sends this on a timer whether or not a trip is running.
func (dc *DriverController) UpdateLocation(c *gin.Context) {
	var input locationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	driverID, ok := parseID(c, input.UserID)
	if !ok {
		return
	}

	if err := dc.dispatch.RecordDriverLocation(c.Request.Context(), driverID, *input.Location); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ActiveTrip returns the driver's current trip, or null when idle.
func (dc *DriverController) ActiveTrip(c *gin.Context) {
	driverID, ok := parseID(c, c.Param("userId"))
	if !ok {
		return
	}

	trip, err := dc.dispatch.DriverActiveTrip(c.Request.Context(), driverID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

func (dc *DriverController) AvailableDrivers(c *gin.Context) {
	drivers, err := dc.dispatch.AvailableDrivers(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("AvailableDrivers: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not list drivers"})
		return
	}
	c.JSON(http.StatusOK, drivers)
}
