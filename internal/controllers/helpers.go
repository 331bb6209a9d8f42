package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fleet_tracker/internal/services"
)

// statusFromError maps the service error taxonomy onto HTTP codes. Anything
// unrecognized is a 500.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFromError(err), gin.H{"success": false, "message": err.Error()})
}

// parseID converts an id from the request into an ObjectID. A string that is
// not valid hex is a malformed request (400), not a missing document.
func parseID(c *gin.Context, raw string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid id: " + raw})
		return primitive.NilObjectID, false
	}
	return id, true
}
