package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"fleet_tracker/internal/geo"
	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

type StopController struct {
	stops repository.StopRepository
}

func NewStopController(stops repository.StopRepository) *StopController {
	return &StopController{stops: stops}
}

type createStopInput struct {
	Name     string           `json:"name" binding:"required"`
	Location *models.GeoPoint `json:"location" binding:"required"`
}

func (sc *StopController) CreateStop(c *gin.Context) {
	var input createStopInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if !geo.ValidPoint(*input.Location) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "coordinates out of range"})
		return
	}

	stop := &models.Stop{Name: input.Name, Location: *input.Location}
	if err := sc.stops.Create(c.Request.Context(), stop); err != nil {
		logrus.WithError(err).Error("CreateStop: insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not create stop"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "stop": stop})
}

func (sc *StopController) ListStops(c *gin.Context) {
	stops, err := sc.stops.List(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("ListStops: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not list stops"})
		return
	}
	c.JSON(http.StatusOK, stops)
}

func (sc *StopController) DeleteStop(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}
	if err := sc.stops.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "stop not found"})
			return
		}
		logrus.WithError(err).Error("DeleteStop: delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not delete stop"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "stop deleted"})
}
