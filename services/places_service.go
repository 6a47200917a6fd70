package services

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LovationAdmin/storefinder-api/models"
)

// MinAutocompleteInput is the shortest input forwarded to Places Autocomplete.
const MinAutocompleteInput = 3

// PlacesService wraps the Google Places endpoints used outside of search:
// location autocomplete and store verification.
type PlacesService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewPlacesService(apiKey string) *PlacesService {
	return &PlacesService{
		apiKey:  apiKey,
		baseURL: googleMapsBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *PlacesService) WithBaseURL(baseURL string) *PlacesService {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

type autocompleteResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Predictions  []struct {
		Description string `json:"description"`
		PlaceID     string `json:"place_id"`
	} `json:"predictions"`
}

// Autocomplete suggests locations for a partial input.
func (s *PlacesService) Autocomplete(ctx context.Context, input string) ([]models.Prediction, error) {
	input = strings.TrimSpace(input)
	if len([]rune(input)) < MinAutocompleteInput {
		return []models.Prediction{}, nil
	}
	if s.apiKey == "" {
		log.Println("[Places] ⚠️  GOOGLE_MAPS_API_KEY not set, no autocomplete")
		return []models.Prediction{}, nil
	}

	q := url.Values{}
	q.Set("input", input)
	q.Set("types", "geocode")
	q.Set("key", s.apiKey)

	var result autocompleteResponse
	if err := getJSON(ctx, s.client, s.baseURL+"/autocomplete/json?"+q.Encode(), &result); err != nil {
		return nil, fmt.Errorf("autocomplete failed: %w", err)
	}
	if result.Status != "OK" && result.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("places API status %s: %s", result.Status, result.ErrorMessage)
	}

	predictions := make([]models.Prediction, 0, len(result.Predictions))
	for _, p := range result.Predictions {
		predictions = append(predictions, models.Prediction{Description: p.Description, PlaceID: p.PlaceID})
	}
	return predictions, nil
}

type findPlaceResponse struct {
	Status     string `json:"status"`
	Candidates []struct {
		PlaceID string `json:"place_id"`
	} `json:"candidates"`
}

type placeDetailsResponse struct {
	Status string `json:"status"`
	Result struct {
		Name             string   `json:"name"`
		FormattedAddress string   `json:"formatted_address"`
		Phone            string   `json:"formatted_phone_number"`
		Website          string   `json:"website"`
		Rating           *float64 `json:"rating,omitempty"`
		OpeningHours     *struct {
			WeekdayText []string `json:"weekday_text"`
		} `json:"opening_hours,omitempty"`
	} `json:"result"`
}

// Verify looks a store up on Google Places and returns its current details.
// A store Places cannot find comes back with Verified=false and no error.
func (s *PlacesService) Verify(ctx context.Context, req models.VerificationRequest) (models.VerificationResponse, error) {
	unverified := models.VerificationResponse{Verified: false, OpeningHours: []string{}}
	if s.apiKey == "" {
		log.Println("[Places] ⚠️  GOOGLE_MAPS_API_KEY not set, cannot verify")
		return unverified, nil
	}

	q := url.Values{}
	q.Set("input", strings.TrimSpace(req.StoreName+" "+req.Address))
	q.Set("inputtype", "textquery")
	q.Set("fields", "place_id")
	if req.Coordinates != nil {
		q.Set("locationbias", fmt.Sprintf("point:%f,%f", req.Coordinates.Lat, req.Coordinates.Lng))
	}
	q.Set("key", s.apiKey)

	var found findPlaceResponse
	if err := getJSON(ctx, s.client, s.baseURL+"/findplacefromtext/json?"+q.Encode(), &found); err != nil {
		return unverified, fmt.Errorf("find place failed: %w", err)
	}
	if len(found.Candidates) == 0 {
		return unverified, nil
	}

	d := url.Values{}
	d.Set("place_id", found.Candidates[0].PlaceID)
	d.Set("fields", "name,formatted_address,formatted_phone_number,website,rating,opening_hours")
	d.Set("key", s.apiKey)

	var details placeDetailsResponse
	if err := getJSON(ctx, s.client, s.baseURL+"/details/json?"+d.Encode(), &details); err != nil {
		return unverified, fmt.Errorf("place details failed: %w", err)
	}
	if details.Status != "OK" {
		return unverified, nil
	}

	resp := models.VerificationResponse{
		Verified:     true,
		Name:         details.Result.Name,
		Address:      details.Result.FormattedAddress,
		OpeningHours: []string{},
		Rating:       details.Result.Rating,
		Phone:        details.Result.Phone,
		Website:      details.Result.Website,
	}
	if details.Result.OpeningHours != nil {
		resp.OpeningHours = append(resp.OpeningHours, details.Result.OpeningHours.WeekdayText...)
	}
	return resp, nil
}
