package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/LovationAdmin/storefinder-api/models"
)

// CategoryPredictor is the AI step of the strategy (embedding similarity).
type CategoryPredictor interface {
	PredictCategories(ctx context.Context, productName string) ([]string, error)
}

// CategoryStrategyService maps a product name to at most MaxTags catalog tags:
// cache, then AI, then keywords, then the generic department-store pair.
type CategoryStrategyService struct {
	cache     CategoryCache
	ai        CategoryPredictor
	maxTags   int
	aiTimeout time.Duration

	pending sync.WaitGroup
}

func NewCategoryStrategyService(cache CategoryCache, ai CategoryPredictor) *CategoryStrategyService {
	return &CategoryStrategyService{
		cache:     cache,
		ai:        ai,
		maxTags:   3,
		aiTimeout: 8 * time.Second,
	}
}

// CategoryStrategy is the outcome of GenerateCategories.
type CategoryStrategy struct {
	NormalizedName string
	Tags           []string
	Source         models.CategorySource
}

// GenerateCategories determines the catalog category tags for a product.
// location is accepted for logging only; categorization is location independent.
func (s *CategoryStrategyService) GenerateCategories(ctx context.Context, productName, location string) CategoryStrategy {
	// 1. Normalisation
	normalized := NormalizeProductName(productName)
	if normalized == "" {
		return CategoryStrategy{Tags: []string{}, Source: models.CategorySourceDefault}
	}

	// 2. Cache
	if s.cache != nil {
		entry, ok, err := s.cache.Get(ctx, normalized)
		if err != nil {
			log.Printf("[CategoryStrategy] ⚠️  Cache read failed for '%s': %v", normalized, err)
		} else if ok && len(entry.Categories) > 0 {
			log.Printf("[CategoryStrategy] ✅ Cache HIT for '%s'", normalized)
			return CategoryStrategy{NormalizedName: normalized, Tags: entry.Categories, Source: models.CategorySourceCache}
		}
	}

	log.Printf("[CategoryStrategy] Cache MISS for '%s' (location: %q)", normalized, location)

	// 3. Similarité IA
	strategy := CategoryStrategy{NormalizedName: normalized}
	if tags, err := s.predict(ctx, normalized); err == nil {
		strategy.Tags = tags
		strategy.Source = models.CategorySourceAI
	} else {
		log.Printf("[CategoryStrategy] AI unavailable, falling back to keywords: %v", err)

		// 4. Mots-clés, puis la paire générique
		strategy.Tags = MatchKeywordCategories(normalized, s.maxTags)
		strategy.Source = models.CategorySourceKeyword
		if len(strategy.Tags) == 0 {
			strategy.Tags = append([]string{}, DefaultCategoryTags...)
			strategy.Source = models.CategorySourceDefault
		}
	}

	// 5. Écriture cache en arrière-plan
	s.saveAsync(models.CategoryCacheEntry{
		ProductNameNormalized: normalized,
		Categories:            strategy.Tags,
		Source:                strategy.Source,
		CreatedAt:             time.Now(),
	})

	return strategy
}

func (s *CategoryStrategyService) predict(ctx context.Context, normalized string) ([]string, error) {
	if s.ai == nil {
		return nil, ErrAIUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()

	tags, err := s.ai.PredictCategories(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if len(tags) > s.maxTags {
		tags = tags[:s.maxTags]
	}
	return tags, nil
}

func (s *CategoryStrategyService) saveAsync(entry models.CategoryCacheEntry) {
	if s.cache == nil {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.cache.Put(ctx, entry); err != nil {
			log.Printf("[CategoryStrategy] Failed to cache: %v", err)
		}
	}()
}

// WaitForCacheWrites blocks until every in-flight cache write has finished.
func (s *CategoryStrategyService) WaitForCacheWrites() {
	s.pending.Wait()
}

// Cache exposes the backend for the admin endpoints.
func (s *CategoryStrategyService) Cache() CategoryCache {
	return s.cache
}
