package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/karmanya-engineer/uber-clone/internal/middleware"
	"github.com/karmanya-engineer/uber-clone/internal/models"
	"github.com/karmanya-engineer/uber-clone/internal/services"
	"github.com/karmanya-engineer/uber-clone/pkg/utils"
	"gorm.io/gorm"
)

func parseRideID(c *gin.Context) (uint, bool) {
	rideID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid ride ID"})
		return 0, false
	}
	return uint(rideID), true
}

func loadRide(c *gin.Context, db *gorm.DB, rideID uint) (*models.Ride, bool) {
	var ride models.Ride
	if err := db.First(&ride, rideID).Error; err != nil {
		c.JSON(404, gin.H{"error": "Ride not found"})
		return nil, false
	}
	return &ride, true
}

// AcceptRide claims a pending ride for the calling driver. The transition is
// a conditional update keyed on the current status, so when two drivers race
// for the same ride exactly one wins and the other gets a conflict.
func AcceptRide(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")
		role := c.GetString("role")

		if role != string(models.UserRoleDriver) {
			c.JSON(403, gin.H{"error": "Only drivers can accept rides"})
			return
		}

		rideID, ok := parseRideID(c)
		if !ok {
			return
		}
		if _, ok := loadRide(c, db, rideID); !ok {
			return
		}

		result := db.Model(&models.Ride{}).
			Where("id = ? AND status = ?", rideID, models.RideStatusPending).
			Updates(map[string]interface{}{
				"driver_id": driverID,
				"status":    models.RideStatusDriverAssigned,
			})
		if result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to accept ride"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(400, gin.H{"error": "Ride is not available"})
			return
		}

		// Claiming driver goes off the market.
		if err := db.Model(&models.User{}).Where("id = ?", driverID).
			Update("is_available", false).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update driver availability"})
			return
		}
		services.SetDriverAvailability(c.Request.Context(), driverID, false)

		var ride models.Ride
		if err := db.Preload("Passenger").Preload("Driver").First(&ride, rideID).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to load ride"})
			return
		}

		middleware.RidesTotal.WithLabelValues(ride.Status).Inc()
		hub.Emit(services.RideChannel(ride.ID), services.EventRideAccepted, ride)
		services.PublishRideUpdate(c.Request.Context(), ride.ID, ride.Status)

		c.JSON(200, ride)
	}
}

// StartRide moves a driver-assigned ride into progress.
func StartRide(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		rideID, ok := parseRideID(c)
		if !ok {
			return
		}
		ride, ok := loadRide(c, db, rideID)
		if !ok {
			return
		}

		if !ride.IsAssignedDriver(userID) {
			c.JSON(403, gin.H{"error": "Only assigned driver can start the ride"})
			return
		}

		result := db.Model(&models.Ride{}).
			Where("id = ? AND status = ? AND driver_id = ?", rideID, models.RideStatusDriverAssigned, userID).
			Update("status", models.RideStatusInProgress)
		if result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to start ride"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(400, gin.H{"error": "Ride must be driver-assigned before starting"})
			return
		}

		if err := db.First(ride, rideID).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to load ride"})
			return
		}

		middleware.RidesTotal.WithLabelValues(ride.Status).Inc()
		hub.Emit(services.RideChannel(ride.ID), services.EventRideStarted, ride)
		services.PublishRideUpdate(c.Request.Context(), ride.ID, ride.Status)

		c.JSON(200, ride)
	}
}

// CompleteRide finishes an in-progress ride, credits the driver's ride count
// and puts them back on the market.
func CompleteRide(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		rideID, ok := parseRideID(c)
		if !ok {
			return
		}
		ride, ok := loadRide(c, db, rideID)
		if !ok {
			return
		}

		if !ride.IsAssignedDriver(userID) {
			c.JSON(403, gin.H{"error": "Only assigned driver can complete the ride"})
			return
		}

		result := db.Model(&models.Ride{}).
			Where("id = ? AND status = ? AND driver_id = ?", rideID, models.RideStatusInProgress, userID).
			Update("status", models.RideStatusCompleted)
		if result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to complete ride"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(400, gin.H{"error": "Ride must be in progress before completion"})
			return
		}

		// The conditional update above fires at most once per ride, so the
		// counter cannot be double-incremented by a repeated request.
		if err := db.Model(&models.User{}).Where("id = ?", userID).
			Updates(map[string]interface{}{
				"is_available": true,
				"total_rides":  gorm.Expr("total_rides + 1"),
			}).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update driver stats"})
			return
		}
		services.SetDriverAvailability(c.Request.Context(), userID, true)

		if err := db.First(ride, rideID).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to load ride"})
			return
		}

		middleware.RidesTotal.WithLabelValues(ride.Status).Inc()
		hub.Emit(services.RideChannel(ride.ID), services.EventRideCompleted, ride)
		services.PublishRideUpdate(c.Request.Context(), ride.ID, ride.Status)

		c.JSON(200, ride)
	}
}

// CancelRide cancels a ride on behalf of the passenger or the assigned
// driver, restoring driver availability when one was assigned.
func CancelRide(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		rideID, ok := parseRideID(c)
		if !ok {
			return
		}
		ride, ok := loadRide(c, db, rideID)
		if !ok {
			return
		}

		if ride.PassengerID != userID && !ride.IsAssignedDriver(userID) {
			c.JSON(403, gin.H{"error": "Unauthorized to cancel this ride"})
			return
		}

		if !ride.CanBeCancelled() {
			c.JSON(400, gin.H{"error": "Ride cannot be cancelled"})
			return
		}

		result := db.Model(&models.Ride{}).
			Where("id = ? AND status IN ?", rideID, []string{
				models.RideStatusPending,
				models.RideStatusDriverAssigned,
				models.RideStatusInProgress,
			}).
			Update("status", models.RideStatusCancelled)
		if result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to cancel ride"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(400, gin.H{"error": "Ride cannot be cancelled"})
			return
		}

		if ride.DriverID != nil {
			if err := db.Model(&models.User{}).Where("id = ?", *ride.DriverID).
				Update("is_available", true).Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to update driver availability"})
				return
			}
			services.SetDriverAvailability(c.Request.Context(), *ride.DriverID, true)
		}

		if err := db.First(ride, rideID).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to load ride"})
			return
		}

		middleware.RidesTotal.WithLabelValues(ride.Status).Inc()
		hub.Emit(services.RideChannel(ride.ID), services.EventRideCancelled, ride)
		services.PublishRideUpdate(c.Request.Context(), ride.ID, ride.Status)

		c.JSON(200, ride)
	}
}

type rideLocationInput struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// UpdateRideLocation records the driver's live position on a ride and pushes
// it to the ride channel. Last write wins; no history is retained.
func UpdateRideLocation(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := parseRideID(c)
		if !ok {
			return
		}

		var input rideLocationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if !utils.ValidCoordinates(*input.Lat, *input.Lng) {
			c.JSON(400, gin.H{"error": "Invalid coordinates"})
			return
		}

		ride, ok := loadRide(c, db, rideID)
		if !ok {
			return
		}

		if err := db.Model(ride).Updates(map[string]interface{}{
			"driver_lat": *input.Lat,
			"driver_lng": *input.Lng,
		}).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update location"})
			return
		}

		hub.Emit(services.RideChannel(rideID), services.EventDriverLocationUpdate, gin.H{
			"rideId": rideID,
			"lat":    *input.Lat,
			"lng":    *input.Lng,
		})

		c.JSON(200, gin.H{"success": true})
	}
}
