package handler

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maikolmontes/pymes-manager/internal/model"
	"github.com/maikolmontes/pymes-manager/pkg/database"
	"github.com/maikolmontes/pymes-manager/pkg/logger"
	"github.com/maikolmontes/pymes-manager/pkg/pagination"
	"github.com/maikolmontes/pymes-manager/pkg/upload"
	"github.com/maikolmontes/pymes-manager/prometheus"
)

// parseCoordinate converts a latitude/longitude form value to a float.
// NaN and infinities are refused so a malformed value never reaches the
// store as a degenerate number.
func parseCoordinate(value string) (float64, bool) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CreateBusiness handles business registration from a multipart form with
// an optional attached image
func CreateBusiness(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.BusinessOperationCounter.WithLabelValues("create").Inc()

	name := c.FormValue("name")
	category := c.FormValue("category")
	latitudeStr := c.FormValue("latitude")
	longitudeStr := c.FormValue("longitude")
	description := c.FormValue("description")
	userIDStr := c.FormValue("user_id")

	if name == "" || category == "" || latitudeStr == "" || longitudeStr == "" || userIDStr == "" {
		log.Warn("Incomplete business data", zap.String("name", name))
		prometheus.RecordAPIError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name, category, latitude, longitude and user_id are required"})
	}

	latitude, okLat := parseCoordinate(latitudeStr)
	longitude, okLng := parseCoordinate(longitudeStr)
	if !okLat || !okLng {
		log.Warn("Invalid coordinates",
			zap.String("latitude", latitudeStr),
			zap.String("longitude", longitudeStr))
		prometheus.RecordAPIError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "latitude and longitude must be valid numbers"})
	}

	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil {
		log.Warn("Invalid user_id", zap.String("user_id", userIDStr))
		prometheus.RecordAPIError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "user_id must be a valid id"})
	}

	// The owning user must exist
	var owner model.User
	if result := database.GetDB().First(&owner, userID); result.Error != nil {
		log.Warn("Business owner not found", zap.Uint64("user_id", userID))
		prometheus.RecordAPIError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "owner user does not exist"})
	}

	var imageURL *string
	filename, err := upload.SaveImage(c, "image", uploadDir)
	if err != nil {
		log.Error("Failed to store business image", zap.Error(err))
		prometheus.RecordAPIError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to store image"})
	}
	if filename != "" {
		url := upload.PublicURL(c, filename)
		imageURL = &url
	}

	business := model.Business{
		Name:        name,
		Category:    category,
		Latitude:    latitude,
		Longitude:   longitude,
		Description: description,
		ImageURL:    imageURL,
		UserID:      uint(userID),
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&business); result.Error != nil {
		log.Error("Failed to create business", zap.Error(result.Error))
		prometheus.RecordAPIError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "business creation failed"})
	}

	log.Info("Business created",
		zap.Uint("id", business.ID),
		zap.String("name", business.Name),
		zap.Uint("user_id", business.UserID))
	return c.JSON(http.StatusCreated, business)
}

// ListBusinesses retrieves all businesses, optionally paginated
func ListBusinesses(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.BusinessOperationCounter.WithLabelValues("list").Inc()

	query := database.GetDB()
	page, limit := pagination.Params(c)
	if offset, ok := pagination.Apply(page, limit); ok {
		query = query.Offset(offset).Limit(limit)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var businesses []model.Business
	if result := query.Find(&businesses); result.Error != nil {
		log.Error("Failed to list businesses", zap.Error(result.Error))
		prometheus.RecordAPIError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve businesses"})
	}

	return c.JSON(http.StatusOK, businesses)
}

// ListBusinessesByOwner retrieves all businesses registered by one user.
// An owner with no businesses gets an empty list, not a 404.
func ListBusinessesByOwner(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.BusinessOperationCounter.WithLabelValues("list_by_owner").Inc()

	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		log.Warn("Invalid user_id", zap.String("user_id", c.Param("user_id")))
		prometheus.RecordAPIError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "user_id must be a valid id"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	businesses := []model.Business{}
	if result := database.GetDB().Where("user_id = ?", userID).Find(&businesses); result.Error != nil {
		log.Error("Failed to list businesses by owner",
			zap.Uint64("user_id", userID),
			zap.Error(result.Error))
		prometheus.RecordAPIError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to retrieve businesses"})
	}

	return c.JSON(http.StatusOK, businesses)
}

// UpdateBusiness applies a partial update from a multipart form. A field
// present in the form is applied even when empty; an absent field keeps
// its stored value.
func UpdateBusiness(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.BusinessOperationCounter.WithLabelValues("update").Inc()

	id := c.Param("id")
	var business model.Business
	if result := database.GetDB().First(&business, "id = ?", id); result.Error != nil {
		log.Warn("Business not found for update", zap.String("id", id))
		prometheus.RecordAPIError("not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"message": "business not found"})
	}

	params, err := c.FormParams()
	if err != nil {
		log.Error("Failed to parse form", zap.Error(err))
		prometheus.RecordAPIError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	has := func(key string) bool {
		_, ok := params[key]
		return ok
	}

	if has("name") {
		business.Name = c.FormValue("name")
	}
	if has("category") {
		business.Category = c.FormValue("category")
	}
	if has("description") {
		business.Description = c.FormValue("description")
	}
	if has("latitude") {
		latitude, ok := parseCoordinate(c.FormValue("latitude"))
		if !ok {
			prometheus.RecordAPIError("validation")
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "latitude must be a valid number"})
		}
		business.Latitude = latitude
	}
	if has("longitude") {
		longitude, ok := parseCoordinate(c.FormValue("longitude"))
		if !ok {
			prometheus.RecordAPIError("validation")
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "longitude must be a valid number"})
		}
		business.Longitude = longitude
	}

	// Replacement image: store the new file before dropping the old one
	filename, err := upload.SaveImage(c, "image", uploadDir)
	if err != nil {
		log.Error("Failed to store replacement image", zap.Error(err))
		prometheus.RecordAPIError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to store image"})
	}
	if filename != "" {
		if business.ImageURL != nil {
			if err := upload.Remove(uploadDir, upload.FilenameFromURL(*business.ImageURL)); err != nil {
				log.Warn("Failed to remove previous image", zap.Error(err))
			}
		}
		url := upload.PublicURL(c, filename)
		business.ImageURL = &url
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&business); result.Error != nil {
		log.Error("Failed to update business", zap.Error(result.Error))
		prometheus.RecordAPIError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "business update failed"})
	}

	log.Info("Business updated", zap.Uint("id", business.ID), zap.String("name", business.Name))
	return c.JSON(http.StatusOK, business)
}

// DeleteBusiness removes a business, its favorites and its stored image
func DeleteBusiness(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.BusinessOperationCounter.WithLabelValues("delete").Inc()

	id := c.Param("id")
	var business model.Business
	if result := database.GetDB().First(&business, "id = ?", id); result.Error != nil {
		log.Warn("Business not found for delete", zap.String("id", id))
		prometheus.RecordAPIError("not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"message": "business not found"})
	}

	// Favorites referencing the business go with it, in one transaction,
	// so no orphaned rows survive the delete.
	defer prometheus.TrackDBOperation("delete")(time.Now())
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("business_id = ?", business.ID).Delete(&model.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&business).Error
	})
	if err != nil {
		log.Error("Failed to delete business", zap.Uint("id", business.ID), zap.Error(err))
		prometheus.RecordAPIError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "business deletion failed"})
	}

	// Best effort: the record is already gone, a leftover file is only noise
	if business.ImageURL != nil {
		if err := upload.Remove(uploadDir, upload.FilenameFromURL(*business.ImageURL)); err != nil {
			log.Warn("Failed to remove business image", zap.Error(err))
		}
	}

	log.Info("Business deleted", zap.Uint("id", business.ID), zap.String("name", business.Name))
	return c.JSON(http.StatusOK, echo.Map{"message": "business deleted"})
}
