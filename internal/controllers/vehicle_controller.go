package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

type VehicleController struct {
	vehicles repository.VehicleRepository
}

func NewVehicleController(vehicles repository.VehicleRepository) *VehicleController {
	return &VehicleController{vehicles: vehicles}
}

type createVehicleInput struct {
	Plate    string `json:"plate" binding:"required"`
	Model    string `json:"model" binding:"required"`
	FuelType string `json:"fuelType"`
}

func (vc *VehicleController) CreateVehicle(c *gin.Context) {
	var input createVehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	vehicle := &models.Vehicle{
		Plate:    input.Plate,
		Model:    input.Model,
		FuelType: input.FuelType,
	}
	if err := vc.vehicles.Create(c.Request.Context(), vehicle); err != nil {
		logrus.WithError(err).Error("CreateVehicle: insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not create vehicle"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "vehicle": vehicle})
}

func (vc *VehicleController) ListVehicles(c *gin.Context) {
	vehicles, err := vc.vehicles.List(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("ListVehicles: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not list vehicles"})
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

func (vc *VehicleController) DeleteVehicle(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}
	if err := vc.vehicles.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "vehicle not found"})
			return
		}
		logrus.WithError(err).Error("DeleteVehicle: delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not delete vehicle"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "vehicle deleted"})
}
