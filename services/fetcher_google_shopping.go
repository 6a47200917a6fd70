package services

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/LovationAdmin/storefinder-api/models"
)

// GoogleShoppingFetcher lists online offers through SerpAPI's google_shopping engine.
type GoogleShoppingFetcher struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGoogleShoppingFetcher(apiKey string) *GoogleShoppingFetcher {
	return &GoogleShoppingFetcher{
		apiKey:  apiKey,
		baseURL: "https://serpapi.com/search.json",
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

func (f *GoogleShoppingFetcher) WithBaseURL(baseURL string) *GoogleShoppingFetcher {
	f.baseURL = baseURL
	return f
}

func (f *GoogleShoppingFetcher) Source() models.StoreSource {
	return models.SourceGoogleShopping
}

type serpShoppingResponse struct {
	Error           string             `json:"error,omitempty"`
	ShoppingResults []serpShoppingItem `json:"shopping_results"`
}

type serpShoppingItem struct {
	Position    int      `json:"position"`
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	ProductLink string   `json:"product_link"`
	Source      string   `json:"source"`
	Price       string   `json:"price"`
	Rating      *float64 `json:"rating,omitempty"`
	Delivery    string   `json:"delivery,omitempty"`
}

func (f *GoogleShoppingFetcher) Search(ctx context.Context, params SearchParams) ([]models.Store, error) {
	if f.apiKey == "" {
		log.Println("[GoogleShopping] ⚠️  SERPAPI_API_KEY not set, skipping")
		return []models.Store{}, nil
	}

	query := strings.TrimSpace(params.Query)
	if query == "" {
		query = strings.TrimSpace(params.ProductName)
	}
	if query == "" {
		return []models.Store{}, nil
	}

	q := url.Values{}
	q.Set("engine", "google_shopping")
	q.Set("q", query)
	if params.Location != "" {
		q.Set("location", params.Location)
	}
	if params.Limit > 0 {
		q.Set("num", strconv.Itoa(params.Limit))
	}
	q.Set("api_key", f.apiKey)

	var result serpShoppingResponse
	if err := getJSON(ctx, f.client, f.baseURL+"?"+q.Encode(), &result); err != nil {
		return nil, fmt.Errorf("google shopping search failed: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("serpapi error: %s", result.Error)
	}

	stores := make([]models.Store, 0, len(result.ShoppingResults))
	for i, item := range result.ShoppingResults {
		if params.Limit > 0 && len(stores) == params.Limit {
			break
		}
		if item.Source == "" && item.Title == "" {
			continue
		}
		stores = append(stores, shoppingItemToStore(item, i))
	}

	log.Printf("[GoogleShopping] ✅ %d offers for '%s'", len(stores), query)
	return stores, nil
}

func shoppingItemToStore(item serpShoppingItem, index int) models.Store {
	name := item.Source
	if name == "" {
		name = item.Title
	}

	link := item.Link
	if link == "" {
		link = item.ProductLink
	}

	price := item.Price
	if price == "" {
		price = models.PriceNotAvailable
	}

	description := item.Title
	if item.Delivery != "" {
		description += " (" + item.Delivery + ")"
	}
	if description == "" {
		description = models.DescriptionNotAvailable
	}

	return models.Store{
		ID:           storeID(models.SourceGoogleShopping, index),
		Name:         name,
		StoreType:    "marketplace",
		Address:      "Online",
		URL:          link,
		Source:       models.SourceGoogleShopping,
		OpeningHours: []string{},
		Price:        price,
		Description:  description,
		Rating:       item.Rating,
	}
}
