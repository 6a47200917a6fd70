package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LovationAdmin/storefinder-api/models"
)

type fakePredictor struct {
	calls int32
	tags  []string
	err   error
}

func (f *fakePredictor) PredictCategories(_ context.Context, _ string) ([]string, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.tags, f.err
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (*models.CategoryCacheEntry, bool, error) {
	return nil, false, errors.New("db down")
}
func (failingCache) Put(context.Context, models.CategoryCacheEntry) error {
	return errors.New("db down")
}
func (failingCache) Delete(context.Context, string) error { return nil }

func TestCategoryStrategyCachesAIResult(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCategoryCache()
	ai := &fakePredictor{tags: []string{"shop=mobile_phone", "shop=electronics"}}
	svc := NewCategoryStrategyService(cache, ai)

	first := svc.GenerateCategories(ctx, "  iPhone 15 Pro ", "")
	svc.WaitForCacheWrites()

	assert.Equal(t, models.CategorySourceAI, first.Source)
	assert.Equal(t, []string{"shop=mobile_phone", "shop=electronics"}, first.Tags)
	assert.Equal(t, int32(1), atomic.LoadInt32(&ai.calls))

	entry, ok, err := cache.Get(ctx, "iphone 15 pro")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.Tags, entry.Categories)

	second := svc.GenerateCategories(ctx, "iphone 15   PRO", "Milano")
	assert.Equal(t, models.CategorySourceCache, second.Source)
	assert.Equal(t, first.Tags, second.Tags)
	assert.Equal(t, int32(1), atomic.LoadInt32(&ai.calls), "cached name must not trigger a second AI call")
}

func TestCategoryStrategyKeywordFallback(t *testing.T) {
	svc := NewCategoryStrategyService(NewMemoryCategoryCache(), &fakePredictor{err: ErrAIUnavailable})

	got := svc.GenerateCategories(context.Background(), "Cordless drill 18V", "")
	svc.WaitForCacheWrites()

	assert.Equal(t, models.CategorySourceKeyword, got.Source)
	assert.Equal(t, []string{"shop=hardware"}, got.Tags)
}

func TestCategoryStrategyDefaultPair(t *testing.T) {
	svc := NewCategoryStrategyService(NewMemoryCategoryCache(), nil)

	got := svc.GenerateCategories(context.Background(), "zzqx gadget", "")
	svc.WaitForCacheWrites()

	assert.Equal(t, models.CategorySourceDefault, got.Source)
	assert.Equal(t, DefaultCategoryTags, got.Tags)
}

func TestCategoryStrategyCapsAITags(t *testing.T) {
	ai := &fakePredictor{tags: []string{"a", "b", "c", "d", "e"}}
	svc := NewCategoryStrategyService(nil, ai)

	got := svc.GenerateCategories(context.Background(), "anything", "")
	assert.Len(t, got.Tags, 3)
}

func TestCategoryStrategyCacheFailuresAreSwallowed(t *testing.T) {
	svc := NewCategoryStrategyService(failingCache{}, &fakePredictor{tags: []string{"shop=books"}})

	got := svc.GenerateCategories(context.Background(), "novel", "")
	svc.WaitForCacheWrites()

	assert.Equal(t, []string{"shop=books"}, got.Tags)
}

func TestCategoryStrategyEmptyName(t *testing.T) {
	ai := &fakePredictor{tags: []string{"shop=books"}}
	svc := NewCategoryStrategyService(NewMemoryCategoryCache(), ai)

	got := svc.GenerateCategories(context.Background(), "   ", "")
	assert.Empty(t, got.Tags)
	assert.Equal(t, int32(0), atomic.LoadInt32(&ai.calls))
}

type fakeEmbedder struct {
	vectors map[string][]float64
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		if v, ok := f.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float64{0, 0, 1}
		}
	}
	return out, nil
}

func TestAICategorizerRanksByCosine(t *testing.T) {
	categories := []CategoryDefinition{
		{OSMTag: "shop=books", Description: "books"},
		{OSMTag: "shop=electronics", Description: "electronics"},
		{OSMTag: "shop=toys", Description: "toys"},
	}
	emb := &fakeEmbedder{vectors: map[string][]float64{
		"wireless earbuds": {1, 0, 0},
		"books":            {0, 1, 0},
		"electronics":      {0.9, 0.1, 0},
		"toys":             {0.5, 0.5, 0},
	}}

	tags, err := NewAICategorizer(emb, categories).PredictCategories(context.Background(), "wireless earbuds")
	require.NoError(t, err)
	assert.Equal(t, []string{"shop=electronics", "shop=toys"}, tags)
}

func TestAICategorizerPropagatesErrors(t *testing.T) {
	_, err := NewAICategorizer(&fakeEmbedder{err: ErrAIUnavailable}, CategoryTable).PredictCategories(context.Background(), "x")
	assert.ErrorIs(t, err, ErrAIUnavailable)
}

func TestMatchKeywordCategories(t *testing.T) {
	assert.Equal(t, []string{"amenity=pharmacy"}, MatchKeywordCategories("ibuprofen 400mg", 3))
	assert.Empty(t, MatchKeywordCategories("zzqx", 3))
	assert.LessOrEqual(t, len(MatchKeywordCategories("phone charger cable tv laptop", 2)), 2)
}
