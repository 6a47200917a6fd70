package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LovationAdmin/storefinder-api/models"
	"github.com/LovationAdmin/storefinder-api/utils"
)

const googleMapsBaseURL = "https://maps.googleapis.com/maps/api/place"

// GoogleMapsFetcher runs one Places Nearby Search per Google type derived
// from the category tags.
type GoogleMapsFetcher struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGoogleMapsFetcher(apiKey string) *GoogleMapsFetcher {
	return &GoogleMapsFetcher{
		apiKey:  apiKey,
		baseURL: googleMapsBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (f *GoogleMapsFetcher) WithBaseURL(baseURL string) *GoogleMapsFetcher {
	f.baseURL = strings.TrimRight(baseURL, "/")
	return f
}

func (f *GoogleMapsFetcher) Source() models.StoreSource {
	return models.SourceGoogleMaps
}

type placesNearbyResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Results      []placeResult `json:"results"`
}

type placeResult struct {
	PlaceID  string   `json:"place_id"`
	Name     string   `json:"name"`
	Vicinity string   `json:"vicinity"`
	Rating   *float64 `json:"rating,omitempty"`
	Types    []string `json:"types"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

func (f *GoogleMapsFetcher) Search(ctx context.Context, params SearchParams) ([]models.Store, error) {
	if f.apiKey == "" {
		log.Println("[GoogleMaps] ⚠️  GOOGLE_MAPS_API_KEY not set, skipping")
		return []models.Store{}, nil
	}

	types := GoogleTypesFor(params.Categories)
	if len(types) == 0 {
		return []models.Store{}, nil
	}

	seen := map[string]bool{}
	stores := []models.Store{}
	failed := 0
	var lastErr error
	for _, placeType := range types {
		results, err := f.nearby(ctx, params, placeType)
		if err != nil {
			// keep what earlier types returned
			utils.SafeWarn("[GoogleMaps] ⚠️  type %s failed: %v", placeType, err)
			failed++
			lastErr = err
			continue
		}
		for _, r := range results {
			if r.Name == "" || seen[r.PlaceID] {
				continue
			}
			seen[r.PlaceID] = true
			stores = append(stores, f.toStore(r, StoreTypeFor(params.Categories, placeType), params))
		}
	}

	if failed == len(types) {
		return nil, lastErr
	}

	SortByDistance(stores)
	if params.Limit > 0 && len(stores) > params.Limit {
		stores = stores[:params.Limit]
	}

	log.Printf("[GoogleMaps] ✅ %d places for types %v", len(stores), types)
	return stores, nil
}

func (f *GoogleMapsFetcher) nearby(ctx context.Context, params SearchParams, placeType string) ([]placeResult, error) {
	q := url.Values{}
	q.Set("location", fmt.Sprintf("%f,%f", params.Lat, params.Lng))
	q.Set("radius", fmt.Sprintf("%d", params.RadiusMeters))
	q.Set("type", placeType)
	if params.ProductName != "" {
		q.Set("keyword", params.ProductName)
	}
	q.Set("key", f.apiKey)

	var result placesNearbyResponse
	if err := getJSON(ctx, f.client, f.baseURL+"/nearbysearch/json?"+q.Encode(), &result); err != nil {
		return nil, fmt.Errorf("places nearby search failed: %w", err)
	}

	switch result.Status {
	case "OK", "ZERO_RESULTS":
		return result.Results, nil
	default:
		return nil, fmt.Errorf("places API status %s: %s", result.Status, result.ErrorMessage)
	}
}

func (f *GoogleMapsFetcher) toStore(r placeResult, storeType string, params SearchParams) models.Store {
	lat, lng := r.Geometry.Location.Lat, r.Geometry.Location.Lng

	address := r.Vicinity
	if address == "" {
		address = utils.FormatCoordinateAddress(lat, lng)
	}

	return models.Store{
		ID:           "gmaps-" + r.PlaceID,
		Name:         r.Name,
		StoreType:    storeType,
		Address:      address,
		Coordinates:  &models.Coordinates{Lat: lat, Lng: lng},
		DistanceKm:   models.Float64Ptr(utils.DistanceKm(params.Lat, params.Lng, lat, lng)),
		URL:          "https://www.google.com/maps/place/?q=place_id:" + r.PlaceID,
		Source:       models.SourceGoogleMaps,
		OpeningHours: []string{},
		Price:        models.PriceContactStore,
		Rating:       r.Rating,
	}
}

// getJSON performs a GET and decodes a 200 JSON body into out.
func getJSON(ctx context.Context, client *http.Client, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return maskedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// url.Error embeds the request URL, which carries the API key.
func maskedError(err error) error {
	return fmt.Errorf("%s", utils.MaskSecrets(err.Error()))
}
