package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LovationAdmin/storefinder-api/models"
	"github.com/LovationAdmin/storefinder-api/utils"
)

// Geocoder resolves a free-text location.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (models.Coordinates, error)
}

// CategoryGenerator turns a product name into catalog category tags.
type CategoryGenerator interface {
	GenerateCategories(ctx context.Context, productName, location string) CategoryStrategy
}

// StoreDeduplicator is the optional AI grouping pass.
type StoreDeduplicator interface {
	Dedupe(ctx context.Context, stores []models.Store) ([]models.Store, []models.DuplicateGroup, error)
}

// ProgressNotifier receives search progress events (websocket hub).
type ProgressNotifier interface {
	Publish(event models.SearchProgressEvent)
}

type noopNotifier struct{}

func (noopNotifier) Publish(models.SearchProgressEvent) {}

// Progress event types.
const (
	EventSearchStarted   = "started"
	EventSourceCompleted = "source_completed"
	EventSourceFailed    = "source_failed"
	EventSearchCompleted = "completed"
	EventSearchFailed    = "failed"
)

type AggregatorConfig struct {
	FetcherTimeout    time.Duration
	DefaultRadius     int
	DefaultMaxResults int
}

// Aggregator runs the full search pipeline: geocode, categories, concurrent
// fetchers, identity dedup, optional AI dedup, ordering and cap.
type Aggregator struct {
	geocoder   Geocoder
	categories CategoryGenerator
	fetchers   []StoreFetcher
	aiDedup    StoreDeduplicator
	notifier   ProgressNotifier
	cfg        AggregatorConfig
}

func NewAggregator(geocoder Geocoder, categories CategoryGenerator, fetchers []StoreFetcher, cfg AggregatorConfig) *Aggregator {
	if cfg.FetcherTimeout <= 0 {
		cfg.FetcherTimeout = 15 * time.Second
	}
	if cfg.DefaultRadius <= 0 {
		cfg.DefaultRadius = 5000
	}
	if cfg.DefaultMaxResults <= 0 {
		cfg.DefaultMaxResults = 50
	}
	return &Aggregator{
		geocoder:   geocoder,
		categories: categories,
		fetchers:   fetchers,
		notifier:   noopNotifier{},
		cfg:        cfg,
	}
}

// WithAIDedup enables the AI grouping pass after identity dedup.
func (a *Aggregator) WithAIDedup(d StoreDeduplicator) *Aggregator {
	a.aiDedup = d
	return a
}

func (a *Aggregator) WithNotifier(n ProgressNotifier) *Aggregator {
	if n != nil {
		a.notifier = n
	}
	return a
}

type fetchResult struct {
	source models.StoreSource
	stores []models.Store
	err    error
}

// Search runs the pipeline. It returns ErrLocationNotFound when the location
// cannot be resolved and ErrNoCategories when the product maps to no tags;
// in both cases no fetcher is called.
func (a *Aggregator) Search(ctx context.Context, req models.SearchRequest) (models.SearchResponse, error) {
	searchID := req.SearchID
	if searchID == "" {
		searchID = uuid.New().String()
	}
	radius := req.Radius
	if radius <= 0 {
		radius = a.cfg.DefaultRadius
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = a.cfg.DefaultMaxResults
	}
	includeOnline := req.IncludeOnline == nil || *req.IncludeOnline

	resp := models.SearchResponse{
		Stores:      []models.Store{},
		SearchID:    searchID,
		SearchTerms: []string{},
		Sources:     map[string]int{},
	}

	a.notifier.Publish(models.SearchProgressEvent{Type: EventSearchStarted, SearchID: searchID})

	// 1. Location
	coords, err := a.geocoder.Geocode(ctx, req.Location)
	if err != nil {
		a.fail(searchID, err)
		if !errors.Is(err, ErrLocationNotFound) {
			err = fmt.Errorf("%w: %v", ErrLocationNotFound, err)
		}
		return resp, err
	}
	resp.Location = coords

	// 2. Categories
	strategy := a.categories.GenerateCategories(ctx, req.ProductName, req.Location)
	if len(strategy.Tags) == 0 {
		a.fail(searchID, ErrNoCategories)
		resp.Message = ErrNoCategories.Error()
		return resp, ErrNoCategories
	}
	resp.SearchTerms = strategy.Tags

	// 3. Fetchers
	params := SearchParams{
		Lat:          coords.Lat,
		Lng:          coords.Lng,
		RadiusMeters: radius,
		Categories:   strategy.Tags,
		Query:        req.ProductName,
		ProductName:  req.ProductName,
		Location:     req.Location,
		Limit:        maxResults,
	}
	results := a.fetchAll(ctx, searchID, params)

	combined := []models.Store{}
	for _, r := range results {
		resp.Sources[string(r.source)] = len(r.stores)
		combined = append(combined, r.stores...)
	}

	// 4. Dedup
	stores := DedupeByIdentity(combined, 0)
	if a.aiDedup != nil {
		// fail-open: on error the input is returned unchanged
		stores, _, _ = a.aiDedup.Dedupe(ctx, stores)
	}

	// 5. Order and cap
	stores = orderResults(stores, includeOnline)
	if len(stores) > maxResults {
		stores = stores[:maxResults]
	}

	resp.Stores = stores
	resp.TotalResults = len(stores)

	a.notifier.Publish(models.SearchProgressEvent{Type: EventSearchCompleted, SearchID: searchID, Count: len(stores)})
	log.Printf("[Aggregator] ✅ Search %s: %d raw, %d returned", searchID, len(combined), len(stores))
	return resp, nil
}

// fetchAll runs every fetcher concurrently. Each one gets its own timeout on
// a context that ignores the caller's cancellation, and results keep fetcher
// order.
func (a *Aggregator) fetchAll(ctx context.Context, searchID string, params SearchParams) []fetchResult {
	results := make([]fetchResult, len(a.fetchers))
	detached := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i, f := range a.fetchers {
		wg.Add(1)
		go func(i int, f StoreFetcher) {
			defer wg.Done()

			fctx, cancel := context.WithTimeout(detached, a.cfg.FetcherTimeout)
			defer cancel()

			start := time.Now()
			stores, err := f.Search(fctx, params)
			results[i] = fetchResult{source: f.Source(), stores: stores, err: err}

			if err != nil {
				utils.SafeWarn("[Aggregator] ❌ %s failed after %v: %v", f.Source(), time.Since(start), err)
				results[i].stores = nil
				a.notifier.Publish(models.SearchProgressEvent{
					Type: EventSourceFailed, SearchID: searchID, Source: string(f.Source()), Error: err.Error(),
				})
				return
			}

			log.Printf("[Aggregator] %s: %d stores in %v", f.Source(), len(stores), time.Since(start))
			a.notifier.Publish(models.SearchProgressEvent{
				Type: EventSourceCompleted, SearchID: searchID, Source: string(f.Source()), Count: len(stores),
			})
		}(i, f)
	}
	wg.Wait()

	return results
}

func (a *Aggregator) fail(searchID string, err error) {
	log.Printf("[Aggregator] ❌ Search %s: %v", searchID, err)
	a.notifier.Publish(models.SearchProgressEvent{Type: EventSearchFailed, SearchID: searchID, Error: err.Error()})
}

// orderResults puts physical stores first, nearest first, then online
// listings in arrival order (dropped when includeOnline is false).
func orderResults(stores []models.Store, includeOnline bool) []models.Store {
	physical := make([]models.Store, 0, len(stores))
	online := []models.Store{}
	for _, s := range stores {
		if s.IsOnline() {
			online = append(online, s)
		} else {
			physical = append(physical, s)
		}
	}

	SortByDistance(physical)
	if includeOnline {
		physical = append(physical, online...)
	}
	return physical
}
