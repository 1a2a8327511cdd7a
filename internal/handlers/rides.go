package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/karmanya-engineer/uber-clone/internal/middleware"
	"github.com/karmanya-engineer/uber-clone/internal/models"
	"github.com/karmanya-engineer/uber-clone/internal/services"
	"github.com/karmanya-engineer/uber-clone/pkg/utils"
	"gorm.io/gorm"
)

type locationInput struct {
	Address string  `json:"address" binding:"required"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type createRideInput struct {
	PickupLocation  locationInput `json:"pickupLocation" binding:"required"`
	DropoffLocation locationInput `json:"dropoffLocation" binding:"required"`
	PaymentMethod   string        `json:"paymentMethod" binding:"omitempty,oneof=cash card"`
}

// CreateRide creates a pending ride with a fare estimate and dispatches it to
// every connected driver.
func CreateRide(db *gorm.DB, hub *services.Hub, estimator *services.FareEstimator) gin.HandlerFunc {
	return func(c *gin.Context) {
		passengerID := c.GetUint("userId")

		var input createRideInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if !utils.ValidCoordinates(input.PickupLocation.Lat, input.PickupLocation.Lng) ||
			!utils.ValidCoordinates(input.DropoffLocation.Lat, input.DropoffLocation.Lng) {
			c.JSON(400, gin.H{"error": "Invalid coordinates"})
			return
		}

		paymentMethod := input.PaymentMethod
		if paymentMethod == "" {
			paymentMethod = models.PaymentMethodCard
		}

		estimate := estimator.Estimate(c.Request.Context(),
			input.PickupLocation.Lat, input.PickupLocation.Lng,
			input.DropoffLocation.Lat, input.DropoffLocation.Lng,
		)

		ride := models.Ride{
			PassengerID:    passengerID,
			PickupAddress:  input.PickupLocation.Address,
			PickupLat:      input.PickupLocation.Lat,
			PickupLng:      input.PickupLocation.Lng,
			DropoffAddress: input.DropoffLocation.Address,
			DropoffLat:     input.DropoffLocation.Lat,
			DropoffLng:     input.DropoffLocation.Lng,
			Status:         models.RideStatusPending,
			Fare:           estimate.Fare,
			Distance:       estimate.Distance,
			Duration:       estimate.Duration,
			PaymentMethod:  paymentMethod,
		}

		if err := db.Create(&ride).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create ride"})
			return
		}

		if err := db.Preload("Passenger").First(&ride, ride.ID).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to load ride"})
			return
		}

		middleware.RidesTotal.WithLabelValues(ride.Status).Inc()

		// Dispatch to all connected drivers.
		hub.EmitToRole(string(models.UserRoleDriver), services.EventNewRide, ride)

		c.JSON(201, ride)
	}
}

// GetRides lists rides where the actor is the passenger or the driver.
func GetRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var rides []models.Ride
		if err := db.Preload("Passenger").Preload("Driver").
			Where("passenger_id = ? OR driver_id = ?", userID, userID).
			Order("created_at DESC").
			Find(&rides).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch rides"})
			return
		}

		c.JSON(200, rides)
	}
}

// GetAvailableRides lists pending rides for drivers to claim.
func GetAvailableRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")

		if role != string(models.UserRoleDriver) {
			c.JSON(403, gin.H{"error": "Only drivers can view available rides"})
			return
		}

		var rides []models.Ride
		if err := db.Preload("Passenger").
			Where("status = ?", models.RideStatusPending).
			Order("created_at DESC").
			Find(&rides).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch available rides"})
			return
		}

		c.JSON(200, rides)
	}
}
