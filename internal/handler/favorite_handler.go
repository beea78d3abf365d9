package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maikolmontes/pymes-manager/internal/model"
	"github.com/maikolmontes/pymes-manager/pkg/database"
	"github.com/maikolmontes/pymes-manager/pkg/logger"
	"github.com/maikolmontes/pymes-manager/prometheus"
)

// FavoriteRequest defines the structure for add/remove favorite requests
type FavoriteRequest struct {
	UserID     uint `json:"user_id" form:"user_id"`
	BusinessID uint `json:"business_id" form:"business_id"`
}

// FavoriteEntry is a favorite denormalized with the business it points to.
// ID is the favorite's own id; the remaining fields describe the business.
type FavoriteEntry struct {
	ID          uint      `json:"id"`
	BusinessID  uint      `json:"business_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"image_url"`
	UserID      uint      `json:"user_id"` // The business owner, not the favoriting user
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AddFavorite bookmarks a business for a user. The composite unique index
// on (user_id, business_id) rejects duplicates, so concurrent adds for the
// same pair cannot both succeed.
func AddFavorite(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.FavoriteOperationCounter.WithLabelValues("add").Inc()

	var req FavoriteRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse favorite request", zap.Error(err))
		prometheus.RecordAPIError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	if req.UserID == 0 || req.BusinessID == 0 {
		log.Warn("Incomplete favorite data",
			zap.Uint("user_id", req.UserID),
			zap.Uint("business_id", req.BusinessID))
		prometheus.RecordAPIError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "user_id and business_id are required"})
	}

	favorite := model.Favorite{
		UserID:     req.UserID,
		BusinessID: req.BusinessID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&favorite); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			log.Warn("Business already in favorites",
				zap.Uint("user_id", req.UserID),
				zap.Uint("business_id", req.BusinessID))
			prometheus.RecordAPIError("conflict")
			return c.JSON(http.StatusConflict, echo.Map{"message": "this business is already in favorites"})
		}
		log.Error("Failed to add favorite", zap.Error(result.Error))
		prometheus.RecordAPIError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to add favorite"})
	}

	log.Info("Favorite added",
		zap.Uint("id", favorite.ID),
		zap.Uint("user_id", favorite.UserID),
		zap.Uint("business_id", favorite.BusinessID))
	return c.JSON(http.StatusCreated, favorite)
}

// ListFavoritesByUser retrieves a user's favorites with the business
// attributes merged into each entry
func ListFavoritesByUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.FavoriteOperationCounter.WithLabelValues("list").Inc()

	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		log.Warn("Invalid user_id", zap.String("user_id", c.Param("user_id")))
		prometheus.RecordAPIError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "user_id must be a valid id"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var favorites []model.Favorite
	result := database.GetDB().Preload("Business").Where("user_id = ?", userID).Find(&favorites)
	if result.Error != nil {
		log.Error("Failed to list favorites",
			zap.Uint64("user_id", userID),
			zap.Error(result.Error))
		prometheus.RecordAPIError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve favorites"})
	}

	entries := make([]FavoriteEntry, 0, len(favorites))
	for _, fav := range favorites {
		entries = append(entries, FavoriteEntry{
			ID:          fav.ID,
			BusinessID:  fav.BusinessID,
			Name:        fav.Business.Name,
			Category:    fav.Business.Category,
			Latitude:    fav.Business.Latitude,
			Longitude:   fav.Business.Longitude,
			Description: fav.Business.Description,
			ImageURL:    fav.Business.ImageURL,
			UserID:      fav.Business.UserID,
			CreatedAt:   fav.Business.CreatedAt,
			UpdatedAt:   fav.Business.UpdatedAt,
		})
	}

	return c.JSON(http.StatusOK, entries)
}

// RemoveFavorite deletes a user's bookmark of a business. Removing a pair
// that does not exist still succeeds, so the operation is idempotent.
func RemoveFavorite(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.FavoriteOperationCounter.WithLabelValues("remove").Inc()

	var req FavoriteRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse favorite request", zap.Error(err))
		prometheus.RecordAPIError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().
		Where("user_id = ? AND business_id = ?", req.UserID, req.BusinessID).
		Delete(&model.Favorite{})
	if result.Error != nil {
		log.Error("Failed to remove favorite", zap.Error(result.Error))
		prometheus.RecordAPIError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to remove favorite"})
	}

	log.Info("Favorite removed",
		zap.Uint("user_id", req.UserID),
		zap.Uint("business_id", req.BusinessID),
		zap.Int64("rows", result.RowsAffected))
	return c.JSON(http.StatusOK, echo.Map{"message": "removed from favorites"})
}
