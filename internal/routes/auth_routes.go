package routes

import (
	"github.com/gin-gonic/gin"

	"fleet_tracker/internal/controllers"
)

func AuthRoutes(api *gin.RouterGroup, auth *controllers.AuthController) {
	api.POST("/register", auth.Register)
	api.POST("/login", auth.Login)
	api.GET("/users", auth.ListUsers)
}
