package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/karmanya-engineer/uber-clone/internal/models"
	"github.com/karmanya-engineer/uber-clone/internal/services"
	"gorm.io/gorm"
)

func ridesRouter(db *gorm.DB, hub *services.Hub, actor *models.User) *gin.Engine {
	estimator := services.NewFareEstimator(nil)
	r := gin.New()
	auth := r.Group("/", authAs(actor))
	auth.POST("/rides", CreateRide(db, hub, estimator))
	auth.GET("/rides", GetRides(db))
	auth.GET("/rides/available", GetAvailableRides(db))
	return r
}

func TestCreateRide(t *testing.T) {
	db := setupTestDB(t)
	hub := setupTestHub()
	passenger := createPassenger(t, db, "p@example.com")

	body := map[string]interface{}{
		"pickupLocation": map[string]interface{}{
			"address": "123 Main St",
			"lat":     40.7128,
			"lng":     -74.0060,
		},
		"dropoffLocation": map[string]interface{}{
			"address": "456 Broadway",
			"lat":     40.7589,
			"lng":     -73.9851,
		},
	}
	w := doJSON(ridesRouter(db, hub, passenger), http.MethodPost, "/rides", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var ride models.Ride
	if err := db.First(&ride).Error; err != nil {
		t.Fatalf("load ride: %v", err)
	}
	if ride.Status != models.RideStatusPending {
		t.Errorf("status = %q, want pending", ride.Status)
	}
	if ride.PassengerID != passenger.ID {
		t.Errorf("PassengerID = %d, want %d", ride.PassengerID, passenger.ID)
	}
	if ride.PaymentMethod != models.PaymentMethodCard {
		t.Errorf("PaymentMethod = %q, want the card default", ride.PaymentMethod)
	}
	if ride.Fare <= 0 || ride.Distance <= 0 {
		t.Errorf("fare estimate not persisted: fare=%v distance=%v", ride.Fare, ride.Distance)
	}
}

func TestCreateRideDispatchesToDrivers(t *testing.T) {
	db := setupTestDB(t)
	hub := setupTestHub()
	passenger := createPassenger(t, db, "p@example.com")

	// A connected driver should see the new ride immediately.
	driverConn := &services.Client{
		ID: "test-driver", UserID: 99, Role: string(models.UserRoleDriver),
		Send: make(chan []byte, 16), Hub: hub,
	}
	hub.Register(driverConn)
	deadline := time.Now().Add(time.Second)
	for hub.GetConnectedClients() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	body := map[string]interface{}{
		"pickupLocation":  map[string]interface{}{"address": "A", "lat": 40.7, "lng": -74.0},
		"dropoffLocation": map[string]interface{}{"address": "B", "lat": 40.8, "lng": -73.9},
	}
	w := doJSON(ridesRouter(db, hub, passenger), http.MethodPost, "/rides", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}

	select {
	case <-driverConn.Send:
	default:
		t.Error("connected driver did not receive the new-ride event")
	}
}

func TestCreateRideInvalidCoordinates(t *testing.T) {
	db := setupTestDB(t)
	hub := setupTestHub()
	passenger := createPassenger(t, db, "p@example.com")

	body := map[string]interface{}{
		"pickupLocation":  map[string]interface{}{"address": "A", "lat": 200.0, "lng": 0.0},
		"dropoffLocation": map[string]interface{}{"address": "B", "lat": 40.8, "lng": -73.9},
	}
	w := doJSON(ridesRouter(db, hub, passenger), http.MethodPost, "/rides", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCreateRideMissingAddress(t *testing.T) {
	db := setupTestDB(t)
	hub := setupTestHub()
	passenger := createPassenger(t, db, "p@example.com")

	body := map[string]interface{}{
		"pickupLocation":  map[string]interface{}{"lat": 40.7, "lng": -74.0},
		"dropoffLocation": map[string]interface{}{"address": "B", "lat": 40.8, "lng": -73.9},
	}
	w := doJSON(ridesRouter(db, hub, passenger), http.MethodPost, "/rides", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetRidesScopedToActor(t *testing.T) {
	db := setupTestDB(t)
	hub := setupTestHub()
	passenger := createPassenger(t, db, "p@example.com")
	other := createPassenger(t, db, "other@example.com")
	driver := createDriver(t, db, "d@example.com", false)

	createRide(t, db, passenger.ID, models.RideStatusPending, nil)
	createRide(t, db, other.ID, models.RideStatusDriverAssigned, &driver.ID)

	w := doJSON(ridesRouter(db, hub, passenger), http.MethodGet, "/rides", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var rides []models.Ride
	mustDecode(t, w, &rides)
	if len(rides) != 1 {
		t.Fatalf("passenger sees %d rides, want 1", len(rides))
	}

	// The driver sees the ride they are assigned to.
	w = doJSON(ridesRouter(db, hub, driver), http.MethodGet, "/rides", nil)
	mustDecode(t, w, &rides)
	if len(rides) != 1 {
		t.Fatalf("driver sees %d rides, want 1", len(rides))
	}
	if rides[0].DriverID == nil || *rides[0].DriverID != driver.ID {
		t.Error("driver listing returned a ride they are not assigned to")
	}
}

func TestGetAvailableRides(t *testing.T) {
	db := setupTestDB(t)
	hub := setupTestHub()
	passenger := createPassenger(t, db, "p@example.com")
	driver := createDriver(t, db, "d@example.com", true)

	createRide(t, db, passenger.ID, models.RideStatusPending, nil)
	createRide(t, db, passenger.ID, models.RideStatusCompleted, &driver.ID)

	w := doJSON(ridesRouter(db, hub, driver), http.MethodGet, "/rides/available", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var rides []models.Ride
	mustDecode(t, w, &rides)
	if len(rides) != 1 {
		t.Fatalf("got %d available rides, want 1", len(rides))
	}
	if rides[0].Status != models.RideStatusPending {
		t.Errorf("status = %q, want pending", rides[0].Status)
	}
}

func TestGetAvailableRidesPassengerForbidden(t *testing.T) {
	db := setupTestDB(t)
	hub := setupTestHub()
	passenger := createPassenger(t, db, "p@example.com")

	w := doJSON(ridesRouter(db, hub, passenger), http.MethodGet, "/rides/available", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}
