package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"fleet_tracker/internal/config"
	"fleet_tracker/internal/middleware"
	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
)

type AuthController struct {
	users repository.UserRepository
}

func NewAuthController(users repository.UserRepository) *AuthController {
	return &AuthController{users: users}
}

type registerInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Plate    string `json:"plate"`
}

func (ac *AuthController) Register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	role, err := validateAndNormalizeRole(input.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not hash password"})
		return
	}

	user := &models.User{
		Username: input.Username,
		Password: string(hash),
		Name:     input.Name,
		Role:     role,
		Plate:    input.Plate,
	}
	if err := ac.users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "username already taken"})
			return
		}
		logrus.WithError(err).Error("Register: could not create user")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "user registered"})
}

func (ac *AuthController) Login(c *gin.Context) {
	var body struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := ac.users.GetByUsername(c.Request.Context(), body.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
			return
		}
		logrus.WithError(err).Error("Login: lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "database error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "incorrect password"})
		return
	}

	token, err := middleware.GenerateToken(user.ID.Hex(), user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

func (ac *AuthController) ListUsers(c *gin.Context) {
	users, err := ac.users.List(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("ListUsers: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// EnsureAdminExists seeds the default admin account on first boot so the
// web console is reachable on a fresh database.
func (ac *AuthController) EnsureAdminExists(username string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := ac.users.GetByUsername(ctx, username)
	if err == nil {
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		logrus.WithError(err).Error("EnsureAdminExists: lookup failed")
		return
	}

	password := config.GetEnv("ADMIN_PASSWORD", "admin123")
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("EnsureAdminExists: could not hash password")
		return
	}
	admin := &models.User{
		Username: username,
		Password: string(hash),
		Name:     "Administrator",
		Role:     "admin",
	}
	if err := ac.users.Create(ctx, admin); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		logrus.WithError(err).Error("EnsureAdminExists: could not create admin")
		return
	}
	logrus.WithField("username", username).Info("seeded default admin user")
}

func validateAndNormalizeRole(roleInput string) (string, error) {
	role := strings.ToLower(strings.TrimSpace(roleInput))
	switch role {
	case "driver", "admin":
		return role, nil
	default:
		return "", errors.New("invalid role")
	}
}
