package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/karmanya-engineer/uber-clone/internal/models"
	"github.com/karmanya-engineer/uber-clone/internal/services"
	"github.com/karmanya-engineer/uber-clone/pkg/utils"
	"gorm.io/gorm"
)

// GetMe returns the authenticated user's profile.
func GetMe(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		c.JSON(200, user)
	}
}

type updateLocationInput struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// UpdateLocation stores the caller's current position. Driver positions are
// mirrored into Redis for the presence layer.
func UpdateLocation(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		role := c.GetString("role")

		var input updateLocationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if !utils.ValidCoordinates(*input.Lat, *input.Lng) {
			c.JSON(400, gin.H{"error": "Invalid coordinates"})
			return
		}

		if err := db.Model(&models.User{}).Where("id = ?", userID).
			Updates(map[string]interface{}{
				"latitude":  *input.Lat,
				"longitude": *input.Lng,
			}).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update location"})
			return
		}

		if role == string(models.UserRoleDriver) {
			services.SetDriverLocation(c.Request.Context(), userID, *input.Lat, *input.Lng)
		}

		c.JSON(200, gin.H{"success": true})
	}
}

type updateAvailabilityInput struct {
	IsAvailable *bool `json:"isAvailable" binding:"required"`
}

// UpdateAvailability toggles whether a driver is accepting new rides.
func UpdateAvailability(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		role := c.GetString("role")

		if role != string(models.UserRoleDriver) {
			c.JSON(403, gin.H{"error": "Only drivers can update availability"})
			return
		}

		var input updateAvailabilityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if err := db.Model(&models.User{}).Where("id = ?", userID).
			Update("is_available", *input.IsAvailable).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update availability"})
			return
		}
		services.SetDriverAvailability(c.Request.Context(), userID, *input.IsAvailable)

		c.JSON(200, gin.H{"success": true, "isAvailable": *input.IsAvailable})
	}
}

const nearbyRadiusKm = 10.0

type nearbyDriver struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Latitude     float64 `json:"lat"`
	Longitude    float64 `json:"lng"`
	Rating       float64 `json:"rating"`
	CarMake      string  `json:"carMake,omitempty"`
	CarModel     string  `json:"carModel,omitempty"`
	LicensePlate string  `json:"licensePlate,omitempty"`
	CarColor     string  `json:"carColor,omitempty"`
}

// GetNearbyDrivers lists available drivers within a flat 10km radius of the
// given point. Callers without coordinates get an empty list rather than an
// error, so clients can poll before geolocation resolves.
func GetNearbyDrivers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		latStr := c.Query("lat")
		lngStr := c.Query("lng")

		drivers := []nearbyDriver{}
		if latStr == "" || lngStr == "" {
			c.JSON(200, gin.H{"drivers": drivers})
			return
		}

		lat, lng, err := utils.ParseCoordinates(latStr, lngStr)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid coordinates"})
			return
		}

		var candidates []models.User
		if err := db.Where("role = ? AND is_available = ?", models.UserRoleDriver, true).
			Find(&candidates).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch drivers"})
			return
		}

		for _, d := range candidates {
			if !d.HasLocation() {
				continue
			}
			if !utils.IsWithinRadius(lat, lng, *d.Latitude, *d.Longitude, nearbyRadiusKm) {
				continue
			}
			drivers = append(drivers, nearbyDriver{
				ID:           d.ID,
				Name:         d.Name,
				Latitude:     *d.Latitude,
				Longitude:    *d.Longitude,
				Rating:       d.Rating,
				CarMake:      d.CarMake,
				CarModel:     d.CarModel,
				LicensePlate: d.LicensePlate,
				CarColor:     d.CarColor,
			})
		}

		c.JSON(200, gin.H{"drivers": drivers})
	}
}
