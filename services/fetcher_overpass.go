package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LovationAdmin/storefinder-api/models"
	"github.com/LovationAdmin/storefinder-api/utils"
)

// OverpassFetcher searches OpenStreetMap POIs around a point.
type OverpassFetcher struct {
	baseURL string
	client  *http.Client
}

func NewOverpassFetcher(baseURL string) *OverpassFetcher {
	return &OverpassFetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *OverpassFetcher) Source() models.StoreSource {
	return models.SourceOpenStreetMap
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *overpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BuildOverpassQuery returns the Overpass QL for nodes and ways carrying any
// of the given key=value tags within radius meters of (lat, lng).
func BuildOverpassQuery(lat, lng float64, radiusMeters int, tags []string) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, tag := range tags {
		key, value, ok := strings.Cut(tag, "=")
		if !ok || key == "" || value == "" {
			continue
		}
		for _, kind := range []string{"node", "way"} {
			fmt.Fprintf(&b, "  %s[%q=%q](around:%d,%.6f,%.6f);\n", kind, key, value, radiusMeters, lat, lng)
		}
	}
	b.WriteString(");\nout center tags;")
	return b.String()
}

func (f *OverpassFetcher) Search(ctx context.Context, params SearchParams) ([]models.Store, error) {
	if len(params.Categories) == 0 {
		return []models.Store{}, nil
	}

	query := BuildOverpassQuery(params.Lat, params.Lng, params.RadiusMeters, params.Categories)
	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("overpass error (status %d): %s", resp.StatusCode, string(body))
	}

	var result overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse overpass response: %w", err)
	}

	stores := make([]models.Store, 0, len(result.Elements))
	for _, el := range result.Elements {
		if store, ok := f.toStore(el, params); ok {
			stores = append(stores, store)
		}
	}

	stores = DedupeByAddress(stores, params.Limit)
	log.Printf("[Overpass] ✅ %d stores for %v", len(stores), params.Categories)
	return stores, nil
}

func (f *OverpassFetcher) toStore(el overpassElement, params SearchParams) (models.Store, bool) {
	name := strings.TrimSpace(el.Tags["name"])
	if name == "" {
		return models.Store{}, false
	}

	lat, lng := el.Lat, el.Lon
	if el.Center != nil {
		lat, lng = el.Center.Lat, el.Center.Lon
	}

	store := models.Store{
		ID:           fmt.Sprintf("osm-%s-%d", el.Type, el.ID),
		Name:         name,
		StoreType:    osmStoreType(el.Tags),
		Address:      osmAddress(el.Tags),
		Coordinates:  &models.Coordinates{Lat: lat, Lng: lng},
		DistanceKm:   models.Float64Ptr(utils.DistanceKm(params.Lat, params.Lng, lat, lng)),
		Phone:        firstTag(el.Tags, "phone", "contact:phone"),
		URL:          firstTag(el.Tags, "website", "contact:website"),
		Source:       models.SourceOpenStreetMap,
		OpeningHours: splitOpeningHours(el.Tags["opening_hours"]),
		Price:        models.PriceContactStore,
	}
	if store.Address == "" {
		store.Address = utils.FormatCoordinateAddress(lat, lng)
	}
	return store, true
}

func osmStoreType(tags map[string]string) string {
	for _, key := range []string{"shop", "amenity"} {
		v := tags[key]
		if v == "" {
			continue
		}
		if c, ok := LookupCategory(key + "=" + v); ok {
			return c.StoreType
		}
		return v
	}
	return "store"
}

func osmAddress(tags map[string]string) string {
	street := strings.TrimSpace(tags["addr:street"] + " " + tags["addr:housenumber"])
	city := strings.TrimSpace(tags["addr:postcode"] + " " + tags["addr:city"])

	parts := []string{}
	if street != "" {
		parts = append(parts, street)
	}
	if city != "" {
		parts = append(parts, city)
	}
	return strings.Join(parts, ", ")
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(tags[k]); v != "" {
			return v
		}
	}
	return ""
}

func splitOpeningHours(raw string) []string {
	hours := []string{}
	for _, part := range strings.Split(raw, ";") {
		if p := strings.TrimSpace(part); p != "" {
			hours = append(hours, p)
		}
	}
	return hours
}
