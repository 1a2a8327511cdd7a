package models

import (
	"gorm.io/gorm"
)

// Ride status constants. RideStatusAccepted is declared in the lifecycle enum
// but no transition produces it; it is kept for schema compatibility.
const (
	RideStatusPending        = "pending"
	RideStatusAccepted       = "accepted"
	RideStatusDriverAssigned = "driver-assigned"
	RideStatusInProgress     = "in-progress"
	RideStatusCompleted      = "completed"
	RideStatusCancelled      = "cancelled"
)

// Payment method constants
const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
)

// Ride represents one passenger transportation request from pickup to dropoff.
type Ride struct {
	gorm.Model
	PassengerID uint  `json:"passengerId" gorm:"column:passenger_id;not null"`
	Passenger   *User `json:"passenger,omitempty" gorm:"foreignKey:PassengerID"`
	DriverID    *uint `json:"driverId,omitempty" gorm:"column:driver_id"`
	Driver      *User `json:"driver,omitempty" gorm:"foreignKey:DriverID"`

	PickupAddress  string  `json:"pickupAddress" gorm:"column:pickup_address;not null"`
	PickupLat      float64 `json:"pickupLat" gorm:"column:pickup_lat;not null"`
	PickupLng      float64 `json:"pickupLng" gorm:"column:pickup_lng;not null"`
	DropoffAddress string  `json:"dropoffAddress" gorm:"column:dropoff_address;not null"`
	DropoffLat     float64 `json:"dropoffLat" gorm:"column:dropoff_lat;not null"`
	DropoffLng     float64 `json:"dropoffLng" gorm:"column:dropoff_lng;not null"`

	Status string `json:"status" gorm:"column:status;not null;default:'pending'"`

	// Computed once at creation, never recomputed.
	Fare     float64 `json:"fare" gorm:"column:fare;not null;default:0"`
	Distance float64 `json:"distance" gorm:"column:distance;not null;default:0"` // kilometers
	Duration float64 `json:"duration" gorm:"column:duration;not null;default:0"` // minutes

	// Live driver tracking, last-write-wins, no history.
	DriverLat *float64 `json:"driverLat,omitempty" gorm:"column:driver_lat"`
	DriverLng *float64 `json:"driverLng,omitempty" gorm:"column:driver_lng"`

	PaymentMethod string `json:"paymentMethod" gorm:"column:payment_method;not null;default:'card'"`

	// Post-ride feedback fields; present in the schema, populated by no endpoint.
	Rating *float64 `json:"rating,omitempty" gorm:"column:rating"`
	Review string   `json:"review,omitempty" gorm:"column:review"`
}

// TableName specifies the table name
func (Ride) TableName() string {
	return "rides"
}

// IsAssignedDriver reports whether userID is the ride's assigned driver.
func (r *Ride) IsAssignedDriver(userID uint) bool {
	return r.DriverID != nil && *r.DriverID == userID
}

// CanBeCancelled reports whether the ride is in a cancellable state.
func (r *Ride) CanBeCancelled() bool {
	switch r.Status {
	case RideStatusPending, RideStatusDriverAssigned, RideStatusInProgress:
		return true
	}
	return false
}
