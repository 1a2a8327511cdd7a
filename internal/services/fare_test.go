package services

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type stubRouting struct {
	meters  float64
	seconds float64
	err     error
	calls   int
}

func (s *stubRouting) Route(ctx context.Context, pickupLat, pickupLng, dropoffLat, dropoffLng float64) (float64, float64, error) {
	s.calls++
	return s.meters, s.seconds, s.err
}

func TestEstimateUsesRoutingService(t *testing.T) {
	routing := &stubRouting{meters: 8000, seconds: 900}
	estimator := NewFareEstimator(routing)

	est := estimator.Estimate(context.Background(), 40.7, -74.0, 40.75, -73.98)

	if routing.calls != 1 {
		t.Fatalf("routing called %d times, want 1", routing.calls)
	}
	if est.Distance != 8.0 {
		t.Errorf("Distance = %v, want 8.0", est.Distance)
	}
	if est.Duration != 15.0 {
		t.Errorf("Duration = %v, want 15.0", est.Duration)
	}
	// 2.5 + 8*1.5 + 15*0.3
	if est.Fare != 19.0 {
		t.Errorf("Fare = %v, want 19.0", est.Fare)
	}
}

func TestEstimateFallsBackOnRoutingError(t *testing.T) {
	routing := &stubRouting{err: errors.New("quota exceeded")}
	estimator := NewFareEstimator(routing)

	// One degree of longitude on the equator: 111 km straight line.
	est := estimator.Estimate(context.Background(), 0, 0, 0, 1)

	if math.Abs(est.Distance-111.0) > 1e-9 {
		t.Errorf("Distance = %v, want 111.0", est.Distance)
	}
	if math.Abs(est.Duration-222.0) > 1e-9 {
		t.Errorf("Duration = %v, want 222.0", est.Duration)
	}
	if math.Abs(est.Fare-(5.0+111.0*1.5)) > 1e-9 {
		t.Errorf("Fare = %v, want %v", est.Fare, 5.0+111.0*1.5)
	}
}

func TestEstimateNilRoutingUsesFallback(t *testing.T) {
	estimator := NewFareEstimator(nil)

	est := estimator.Estimate(context.Background(), 0, 0, 0, 1)

	if math.Abs(est.Distance-111.0) > 1e-9 {
		t.Errorf("Distance = %v, want 111.0", est.Distance)
	}
}

func TestDistanceMatrixRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("origins"); got == "" {
			t.Errorf("missing origins parameter")
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q, want test-key", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"rows": [{"elements": [{
				"status": "OK",
				"distance": {"value": 12500},
				"duration": {"value": 1500}
			}]}]
		}`))
	}))
	defer server.Close()

	svc := &DistanceMatrixService{
		Endpoint: server.URL,
		APIKey:   "test-key",
		Client:   &http.Client{Timeout: time.Second},
	}

	meters, seconds, err := svc.Route(context.Background(), 40.7, -74.0, 40.75, -73.98)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if meters != 12500 {
		t.Errorf("meters = %v, want 12500", meters)
	}
	if seconds != 1500 {
		t.Errorf("seconds = %v, want 1500", seconds)
	}
}

func TestDistanceMatrixRouteNoRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "OK", "rows": [{"elements": [{"status": "ZERO_RESULTS"}]}]}`))
	}))
	defer server.Close()

	svc := &DistanceMatrixService{
		Endpoint: server.URL,
		Client:   &http.Client{Timeout: time.Second},
	}

	if _, _, err := svc.Route(context.Background(), 0, 0, 1, 1); err == nil {
		t.Error("expected error for unroutable pair")
	}
}

func TestDistanceMatrixRouteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := &DistanceMatrixService{
		Endpoint: server.URL,
		Client:   &http.Client{Timeout: time.Second},
	}

	if _, _, err := svc.Route(context.Background(), 0, 0, 1, 1); err == nil {
		t.Error("expected error for server failure")
	}
}
