package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

// RoutingService resolves road distance and duration between two points.
type RoutingService interface {
	// Route returns distance in meters and duration in seconds.
	Route(ctx context.Context, pickupLat, pickupLng, dropoffLat, dropoffLng float64) (float64, float64, error)
}

// DistanceMatrixService queries the Google Distance Matrix API.
type DistanceMatrixService struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

const distanceMatrixEndpoint = "https://maps.googleapis.com/maps/api/distancematrix/json"

func NewDistanceMatrixService() *DistanceMatrixService {
	return &DistanceMatrixService{
		Endpoint: distanceMatrixEndpoint,
		APIKey:   os.Getenv("GOOGLE_MAPS_API_KEY"),
		Client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Route calls the Distance Matrix API for one origin/destination pair.
func (s *DistanceMatrixService) Route(ctx context.Context, pickupLat, pickupLng, dropoffLat, dropoffLng float64) (float64, float64, error) {
	params := url.Values{}
	params.Set("origins", fmt.Sprintf("%f,%f", pickupLat, pickupLng))
	params.Set("destinations", fmt.Sprintf("%f,%f", dropoffLat, dropoffLng))
	params.Set("key", s.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("distance matrix: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		Rows []struct {
			Elements []struct {
				Status   string `json:"status"`
				Distance struct {
					Value float64 `json:"value"` // meters
				} `json:"distance"`
				Duration struct {
					Value float64 `json:"value"` // seconds
				} `json:"duration"`
			} `json:"elements"`
		} `json:"rows"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, 0, err
	}

	if out.Status != "OK" || len(out.Rows) == 0 || len(out.Rows[0].Elements) == 0 {
		return 0, 0, fmt.Errorf("distance matrix: no route (%s)", out.Status)
	}
	element := out.Rows[0].Elements[0]
	if element.Status != "OK" {
		return 0, 0, fmt.Errorf("distance matrix: element status %s", element.Status)
	}

	return element.Distance.Value, element.Duration.Value, nil
}
