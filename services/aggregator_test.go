package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LovationAdmin/storefinder-api/models"
)

type fakeGeocoder struct {
	coords models.Coordinates
	err    error
}

func (f fakeGeocoder) Geocode(context.Context, string) (models.Coordinates, error) {
	return f.coords, f.err
}

type fakeCategories struct {
	tags []string
}

func (f fakeCategories) GenerateCategories(context.Context, string, string) CategoryStrategy {
	return CategoryStrategy{Tags: f.tags, Source: models.CategorySourceKeyword}
}

type fakeFetcher struct {
	source models.StoreSource
	stores []models.Store
	err    error
	block  bool
	calls  int32
	ctxErr error
}

func (f *fakeFetcher) Source() models.StoreSource { return f.source }

func (f *fakeFetcher) Search(ctx context.Context, _ SearchParams) ([]models.Store, error) {
	atomic.AddInt32(&f.calls, 1)
	f.ctxErr = ctx.Err()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.stores, f.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.SearchProgressEvent
}

func (r *recordingNotifier) Publish(e models.SearchProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingNotifier) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []string{}
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

var milan = models.Coordinates{Lat: 45.4642, Lng: 9.19}

func nearStore(id, name string, dist float64, source models.StoreSource) models.Store {
	return models.Store{
		ID: id, Name: name, Address: name + " street 1", Source: source,
		Coordinates: &models.Coordinates{Lat: 45.46, Lng: 9.19},
		DistanceKm:  models.Float64Ptr(dist),
	}
}

func onlineStore(id, name string) models.Store {
	return models.Store{ID: id, Name: name, Address: "Online", URL: "https://" + id + ".example", Source: models.SourceGoogleShopping}
}

func TestAggregatorSearchPipeline(t *testing.T) {
	osm := &fakeFetcher{source: models.SourceOpenStreetMap, stores: []models.Store{
		nearStore("osm-1", "Far Electronics", 4.2, models.SourceOpenStreetMap),
		nearStore("osm-2", "MediaWorld", 1.1, models.SourceOpenStreetMap),
	}}
	gmaps := &fakeFetcher{source: models.SourceGoogleMaps, stores: []models.Store{
		nearStore("gm-1", "mediaworld", 1.2, models.SourceGoogleMaps),
	}}
	shopping := &fakeFetcher{source: models.SourceGoogleShopping, stores: []models.Store{
		onlineStore("amazon", "Amazon"),
	}}
	broken := &fakeFetcher{source: models.SourceAICrawl, err: errors.New("boom")}
	notifier := &recordingNotifier{}

	agg := NewAggregator(fakeGeocoder{coords: milan}, fakeCategories{tags: []string{"shop=electronics"}},
		[]StoreFetcher{osm, gmaps, shopping, broken}, AggregatorConfig{}).WithNotifier(notifier)

	resp, err := agg.Search(context.Background(), models.SearchRequest{ProductName: "tv", Location: "Milano", SearchID: "s-1"})
	require.NoError(t, err)

	require.Len(t, resp.Stores, 3)
	assert.Equal(t, "MediaWorld", resp.Stores[0].Name)
	assert.Equal(t, 2, resp.Stores[0].SourceCount)
	assert.Equal(t, "osm-1", resp.Stores[1].ID)
	assert.Equal(t, "amazon", resp.Stores[2].ID)
	assert.Equal(t, 3, resp.TotalResults)
	assert.Equal(t, "s-1", resp.SearchID)
	assert.Equal(t, milan, resp.Location)
	assert.Equal(t, []string{"shop=electronics"}, resp.SearchTerms)
	assert.Equal(t, 2, resp.Sources[string(models.SourceOpenStreetMap)])
	assert.Equal(t, 0, resp.Sources[string(models.SourceAICrawl)])

	types := notifier.types()
	assert.Equal(t, EventSearchStarted, types[0])
	assert.Equal(t, EventSearchCompleted, types[len(types)-1])
	assert.Contains(t, types, EventSourceFailed)
}

func TestAggregatorExcludesOnlineAndCaps(t *testing.T) {
	f := &fakeFetcher{source: models.SourceOpenStreetMap, stores: []models.Store{
		nearStore("a", "A", 3, models.SourceOpenStreetMap),
		onlineStore("b", "B"),
		nearStore("c", "C", 1, models.SourceOpenStreetMap),
		nearStore("d", "D", 2, models.SourceOpenStreetMap),
	}}
	agg := NewAggregator(fakeGeocoder{coords: milan}, fakeCategories{tags: []string{"shop=books"}}, []StoreFetcher{f}, AggregatorConfig{})

	excl := false
	resp, err := agg.Search(context.Background(), models.SearchRequest{ProductName: "x", Location: "y", MaxResults: 2, IncludeOnline: &excl})
	require.NoError(t, err)
	require.Len(t, resp.Stores, 2)
	assert.Equal(t, "c", resp.Stores[0].ID)
	assert.Equal(t, "d", resp.Stores[1].ID)
	assert.NotEmpty(t, resp.SearchID)
}

func TestAggregatorLocationNotFound(t *testing.T) {
	f := &fakeFetcher{source: models.SourceOpenStreetMap}
	agg := NewAggregator(fakeGeocoder{err: ErrLocationNotFound}, fakeCategories{tags: []string{"shop=books"}}, []StoreFetcher{f}, AggregatorConfig{})

	_, err := agg.Search(context.Background(), models.SearchRequest{ProductName: "x", Location: "Atlantis"})
	assert.ErrorIs(t, err, ErrLocationNotFound)
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.calls))
}

func TestAggregatorNoCategoriesSkipsFetchers(t *testing.T) {
	f := &fakeFetcher{source: models.SourceOpenStreetMap}
	agg := NewAggregator(fakeGeocoder{coords: milan}, fakeCategories{tags: []string{}}, []StoreFetcher{f}, AggregatorConfig{})

	resp, err := agg.Search(context.Background(), models.SearchRequest{ProductName: "x", Location: "Milano"})
	assert.ErrorIs(t, err, ErrNoCategories)
	assert.Empty(t, resp.Stores)
	assert.Equal(t, "no categories found", resp.Message)
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.calls))
}

func TestAggregatorFetchersIgnoreCallerCancellation(t *testing.T) {
	fast := &fakeFetcher{source: models.SourceOpenStreetMap, stores: []models.Store{nearStore("a", "A", 1, models.SourceOpenStreetMap)}}
	slow := &fakeFetcher{source: models.SourceWebSearch, block: true}

	agg := NewAggregator(fakeGeocoder{coords: milan}, fakeCategories{tags: []string{"shop=books"}},
		[]StoreFetcher{fast, slow}, AggregatorConfig{FetcherTimeout: 50 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	resp, err := agg.Search(ctx, models.SearchRequest{ProductName: "x", Location: "Milano"})
	require.NoError(t, err)

	assert.NoError(t, fast.ctxErr)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	require.Len(t, resp.Stores, 1)
	assert.Equal(t, "a", resp.Stores[0].ID)
}

type fakeAIDedup struct {
	err error
}

func (f fakeAIDedup) Dedupe(_ context.Context, stores []models.Store) ([]models.Store, []models.DuplicateGroup, error) {
	if f.err != nil {
		return stores, nil, f.err
	}
	return stores[:1], []models.DuplicateGroup{{Indices: []int{0, 1}}}, nil
}

func TestAggregatorAIDedup(t *testing.T) {
	f := &fakeFetcher{source: models.SourceOpenStreetMap, stores: []models.Store{
		nearStore("a", "Apple Store", 1, models.SourceOpenStreetMap),
		nearStore("b", "Apple Piazza Liberty", 1.1, models.SourceOpenStreetMap),
	}}

	agg := NewAggregator(fakeGeocoder{coords: milan}, fakeCategories{tags: []string{"shop=electronics"}}, []StoreFetcher{f}, AggregatorConfig{})

	resp, err := agg.WithAIDedup(fakeAIDedup{}).Search(context.Background(), models.SearchRequest{ProductName: "x", Location: "y"})
	require.NoError(t, err)
	assert.Len(t, resp.Stores, 1)

	resp, err = agg.WithAIDedup(fakeAIDedup{err: ErrInvalidAIResponse}).Search(context.Background(), models.SearchRequest{ProductName: "x", Location: "y"})
	require.NoError(t, err)
	assert.Len(t, resp.Stores, 2)
}
