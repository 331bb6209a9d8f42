package routes

import (
	"github.com/gin-gonic/gin"

	"fleet_tracker/internal/controllers"
)

func MessageRoutes(api *gin.RouterGroup, messages *controllers.MessageController) {
	m := api.Group("/messages")
	{
		m.POST("/send", messages.SendMessage)
		m.GET("/:driverId", messages.ListMessages)
	}
}
