package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/LovationAdmin/storefinder-api/models"
	"github.com/LovationAdmin/storefinder-api/utils"
)

var latLngPattern = regexp.MustCompile(`^\s*(-?\d{1,3}(?:\.\d+)?)\s*,\s*(-?\d{1,3}(?:\.\d+)?)\s*$`)

// GeocoderService resolves free-text locations through Nominatim.
type GeocoderService struct {
	baseURL   string
	userAgent string
	limiter   *IntervalLimiter
	client    *http.Client
}

func NewGeocoderService(baseURL, userAgent string, minInterval time.Duration) *GeocoderService {
	return &GeocoderService{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		limiter:   NewIntervalLimiter(minInterval),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// ParseLatLng accepts a literal "lat,lng" string.
func ParseLatLng(input string) (models.Coordinates, bool, error) {
	m := latLngPattern.FindStringSubmatch(input)
	if m == nil {
		return models.Coordinates{}, false, nil
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return models.Coordinates{}, true, fmt.Errorf("invalid latitude %q: %w", m[1], err)
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return models.Coordinates{}, true, fmt.Errorf("invalid longitude %q: %w", m[2], err)
	}
	if !utils.ValidLatLng(lat, lng) {
		return models.Coordinates{}, true, fmt.Errorf("coordinates out of range: %s", input)
	}

	return models.Coordinates{Lat: lat, Lng: lng}, true, nil
}

// Geocode returns the coordinates of location. Literal coordinates never
// reach the network. Every failure is reported as ErrLocationNotFound.
func (s *GeocoderService) Geocode(ctx context.Context, location string) (models.Coordinates, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return models.Coordinates{}, ErrLocationNotFound
	}

	coords, literal, err := ParseLatLng(location)
	if literal {
		if err != nil {
			return models.Coordinates{}, fmt.Errorf("%w: %v", ErrLocationNotFound, err)
		}
		return coords, nil
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrLocationNotFound, err)
	}

	params := url.Values{}
	params.Set("q", location)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrLocationNotFound, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		utils.SafeWarn("[Geocoder] ❌ Request failed for '%s': %v", location, err)
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrLocationNotFound, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		utils.SafeWarn("[Geocoder] ❌ Nominatim status %d: %s", resp.StatusCode, string(body))
		return models.Coordinates{}, fmt.Errorf("%w: nominatim status %d", ErrLocationNotFound, resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrLocationNotFound, err)
	}
	if len(results) == 0 {
		return models.Coordinates{}, ErrLocationNotFound
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLng != nil || !utils.ValidLatLng(lat, lng) {
		return models.Coordinates{}, fmt.Errorf("%w: bad coordinates in result", ErrLocationNotFound)
	}

	log.Printf("[Geocoder] 📍 '%s' -> %.5f, %.5f (%s)", location, lat, lng, results[0].DisplayName)
	return models.Coordinates{Lat: lat, Lng: lng}, nil
}
