package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/maikolmontes/pymes-manager/internal/model"
	"github.com/maikolmontes/pymes-manager/pkg/database"
	"github.com/maikolmontes/pymes-manager/pkg/jwtutil"
	"github.com/maikolmontes/pymes-manager/pkg/logger"
	"github.com/maikolmontes/pymes-manager/pkg/pagination"
	"github.com/maikolmontes/pymes-manager/prometheus"
)

// RegisterRequest defines the structure for user registration requests
type RegisterRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Document string `json:"document" form:"document"`
	Phone    string `json:"phone" form:"phone"`
	Address  string `json:"address" form:"address"`
	UserType string `json:"user_type" form:"user_type"`
}

// Register handles new user registration
func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAPIError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	if req.Name == "" || req.Email == "" || req.Password == "" || req.Document == "" ||
		req.Phone == "" || req.Address == "" || req.UserType == "" {
		log.Warn("Incomplete registration data", zap.String("email", req.Email))
		prometheus.RecordAPIError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "all fields are required"})
	}

	if !model.ValidUserType(req.UserType) {
		log.Warn("Invalid user type", zap.String("user_type", req.UserType))
		prometheus.RecordAPIError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "user_type must be Cliente or Emprendedor"})
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAPIError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "registration failed"})
	}

	user := model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Document: req.Document,
		Phone:    req.Phone,
		Address:  req.Address,
		UserType: req.UserType,
	}

	// The unique index on document is the duplicate guard: the insert fails
	// instead of a racy existence check beforehand.
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&user); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			log.Warn("Duplicate document on registration", zap.String("document", req.Document))
			prometheus.RecordAPIError("conflict")
			return c.JSON(http.StatusConflict, echo.Map{"message": "a user with this document already exists"})
		}
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordAPIError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "registration failed"})
	}

	log.Info("User registered",
		zap.Uint("id", user.ID),
		zap.String("email", user.Email),
		zap.String("user_type", user.UserType))
	return c.JSON(http.StatusCreated, user)
}

// Login verifies a user's credentials and issues a token
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAPIError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Warn("Login for unknown email", zap.String("email", req.Email))
		prometheus.RecordAPIError("unauthorized")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
	}

	// Verify password against the stored bcrypt hash
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAPIError("unauthorized")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID, user.UserType)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAPIError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "login failed"})
	}

	log.Info("User logged in", zap.Uint("id", user.ID), zap.String("email", user.Email))
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  user,
	})
}

// ListUsers retrieves all users, optionally paginated
func ListUsers(c echo.Context) error {
	log := logger.FromContext(c)

	query := database.GetDB()
	page, limit := pagination.Params(c)
	if offset, ok := pagination.Apply(page, limit); ok {
		query = query.Offset(offset).Limit(limit)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var users []model.User
	if result := query.Find(&users); result.Error != nil {
		log.Error("Failed to list users", zap.Error(result.Error))
		prometheus.RecordAPIError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve users"})
	}

	return c.JSON(http.StatusOK, users)
}
