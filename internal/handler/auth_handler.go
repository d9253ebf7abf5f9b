package handler

import (
	"net/http"
	"time"

	"github.com/DeiVid1337/Boss-Pods-Api/internal/model"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/database"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/jwtutil"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/logger"
	"github.com/DeiVid1337/Boss-Pods-Api/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Login authenticates by email/password and issues a JWT
func Login(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())
	log := logger.FromContext(c)
	prometheus.AuthAttemptsCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var user model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Warn("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError()
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError()
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if !user.IsActive {
		log.Warn("Disabled account login attempt", zap.String("email", req.Email))
		prometheus.RecordAuthError()
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account is disabled"})
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID, string(user.Role), user.StoreID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.AuthSuccessCounter.Inc()
	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)))

	if user.StoreID != nil {
		database.GetDB().Preload("Store").First(&user, user.ID)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated user with their store
func Me(c echo.Context) error {
	user := currentUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}

	if user.StoreID != nil {
		database.GetDB().Preload("Store").First(user, user.ID)
	}
	return c.JSON(http.StatusOK, user)
}
