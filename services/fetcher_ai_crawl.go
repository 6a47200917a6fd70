package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/LovationAdmin/storefinder-api/models"
	"github.com/LovationAdmin/storefinder-api/utils"
)

// AICrawlFetcher asks a language model with web access for stores selling a
// product. The same code serves Perplexity (Web Search) and Claude (AI Crawl).
type AICrawlFetcher struct {
	llm      LLMClient
	source   models.StoreSource
	maxItems int
}

func NewAICrawlFetcher(llm LLMClient, source models.StoreSource) *AICrawlFetcher {
	return &AICrawlFetcher{llm: llm, source: source, maxItems: 15}
}

func (f *AICrawlFetcher) Source() models.StoreSource {
	return f.source
}

const aiCrawlSystemPrompt = `You are a retail research assistant. You find real shops, physical or online, that sell a given product. You answer with JSON only, no prose and no markdown.`

type aiCrawlResponse struct {
	Stores []aiCrawlStore `json:"stores"`
}

type aiCrawlStore struct {
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	URL          string   `json:"url"`
	Phone        string   `json:"phone"`
	Price        string   `json:"price"`
	Description  string   `json:"description"`
	OpeningHours []string `json:"openingHours"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Online       bool     `json:"online"`
}

func (f *AICrawlFetcher) Search(ctx context.Context, params SearchParams) ([]models.Store, error) {
	product := strings.TrimSpace(params.ProductName)
	if product == "" {
		product = strings.TrimSpace(params.Query)
	}
	if product == "" {
		return []models.Store{}, nil
	}

	content, err := f.llm.Complete(ctx, aiCrawlSystemPrompt, f.buildPrompt(product, params.Location))
	if errors.Is(err, ErrAIUnavailable) {
		log.Printf("[%s] ⚠️  %v, skipping", f.source, err)
		return []models.Store{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("AI call failed: %w", err)
	}

	items, err := parseAICrawlResponse(content)
	if err != nil {
		log.Printf("[%s] ❌ %v", f.source, err)
		return nil, err
	}

	stores := make([]models.Store, 0, len(items))
	for i, item := range items {
		if len(stores) == f.limit(params) {
			break
		}
		stores = append(stores, f.toStore(item, i, params))
	}

	log.Printf("[%s] ✅ %d stores for '%s'", f.source, len(stores), product)
	return stores, nil
}

func (f *AICrawlFetcher) limit(params SearchParams) int {
	if params.Limit > 0 && params.Limit < f.maxItems {
		return params.Limit
	}
	return f.maxItems
}

func (f *AICrawlFetcher) buildPrompt(product, location string) string {
	where := "online shops that deliver nationwide"
	if location != "" {
		where = fmt.Sprintf("physical stores in or near %s, plus online shops that deliver there", location)
	}

	return fmt.Sprintf(`Find up to %d %s that sell: "%s".

Return exactly this JSON shape:
{
  "stores": [
    {
      "name": "store name",
      "address": "full postal address, or empty for online-only shops",
      "url": "https://...",
      "phone": "",
      "price": "price with currency symbol, or empty if unknown",
      "description": "one sentence about the offer",
      "openingHours": ["Mo-Fr 09:00-19:00"],
      "latitude": null,
      "longitude": null,
      "online": false
    }
  ]
}

Only include businesses you found evidence for. Never invent addresses or prices.`, f.maxItems, where, product)
}

// parseAICrawlResponse validates the model output: a JSON object with a
// stores array whose entries all have a name.
func parseAICrawlResponse(content string) ([]aiCrawlStore, error) {
	content = stripCodeFence(content)

	var response aiCrawlResponse
	if err := json.Unmarshal([]byte(content), &response); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAIResponse, err)
	}
	if response.Stores == nil {
		return nil, fmt.Errorf("%w: missing stores array", ErrInvalidAIResponse)
	}

	valid := make([]aiCrawlStore, 0, len(response.Stores))
	for _, s := range response.Stores {
		if strings.TrimSpace(s.Name) == "" {
			continue
		}
		valid = append(valid, s)
	}
	return valid, nil
}

func (f *AICrawlFetcher) toStore(item aiCrawlStore, index int, params SearchParams) models.Store {
	store := models.Store{
		ID:           storeID(f.source, index),
		Name:         strings.TrimSpace(item.Name),
		StoreType:    "retail",
		Address:      strings.TrimSpace(item.Address),
		Phone:        item.Phone,
		URL:          item.URL,
		Source:       f.source,
		OpeningHours: item.OpeningHours,
		Price:        item.Price,
		Description:  item.Description,
	}
	if store.OpeningHours == nil {
		store.OpeningHours = []string{}
	}
	if store.Price == "" {
		store.Price = models.PriceNotAvailable
	}
	if store.Description == "" {
		store.Description = models.DescriptionNotAvailable
	}

	if item.Online {
		store.StoreType = "online"
	}

	if !item.Online && item.Latitude != nil && item.Longitude != nil && utils.ValidLatLng(*item.Latitude, *item.Longitude) {
		store.Coordinates = &models.Coordinates{Lat: *item.Latitude, Lng: *item.Longitude}
		if hasOrigin(params) {
			store.DistanceKm = models.Float64Ptr(utils.DistanceKm(params.Lat, params.Lng, *item.Latitude, *item.Longitude))
		}
	}

	if store.Address == "" {
		if store.Coordinates != nil {
			store.Address = utils.FormatCoordinateAddress(store.Coordinates.Lat, store.Coordinates.Lng)
		} else if item.Online {
			store.Address = "Online"
		} else {
			store.Address = models.AddressNotAvailable
		}
	}
	return store
}

// (0, 0) is what callers pass when no location was resolved.
func hasOrigin(params SearchParams) bool {
	return (params.Lat != 0 || params.Lng != 0) && utils.ValidLatLng(params.Lat, params.Lng)
}
