package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

// MessageController handles dispatcher notes to drivers. Drivers poll for
// their inbox; there is no push channel.
type MessageController struct {
	messages repository.MessageRepository
	users    repository.UserRepository
}

func NewMessageController(messages repository.MessageRepository, users repository.UserRepository) *MessageController {
	return &MessageController{messages: messages, users: users}
}

type sendMessageInput struct {
	DriverID string `json:"driverId" binding:"required"`
	Content  string `json:"content" binding:"required"`
	From     string `json:"from"`
}

func (mc *MessageController) SendMessage(c *gin.Context) {
	var input sendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	driverID, ok := parseID(c, input.DriverID)
	if !ok {
		return
	}

	if _, err := mc.users.GetByID(c.Request.Context(), driverID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "driver not found"})
			return
		}
		logrus.WithError(err).Error("SendMessage: driver lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "database error"})
		return
	}

	from := input.From
	if from == "" {
		from = "dispatch"
	}
	msg := &models.Message{From: from, ToDriverID: driverID, Content: input.Content}
	if err := mc.messages.Create(c.Request.Context(), msg); err != nil {
		logrus.WithError(err).Error("SendMessage: insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not send message"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "message sent"})
}

func (mc *MessageController) ListMessages(c *gin.Context) {
	driverID, ok := parseID(c, c.Param("driverId"))
	if !ok {
		return
	}
	messages, err := mc.messages.ListByDriver(c.Request.Context(), driverID)
	if err != nil {
		logrus.WithError(err).Error("ListMessages: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not list messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
