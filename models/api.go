package models

import "time"

// ============================================================================
// GENERIC RESPONSES
// ============================================================================

type StoresResponse struct {
	Stores       []Store `json:"stores"`
	TotalResults int     `json:"totalResults"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ============================================================================
// CATEGORY STRATEGY
// ============================================================================

type CategoryStrategyRequest struct {
	ProductName string `json:"productName"`
	Location    string `json:"location,omitempty"`
}

// CategorySource tells where a set of category tags came from.
type CategorySource string

const (
	CategorySourceCache   CategorySource = "cache"
	CategorySourceAI      CategorySource = "ai"
	CategorySourceKeyword CategorySource = "keyword"
	CategorySourceDefault CategorySource = "default"
)

type CategoryStrategyResponse struct {
	ProductName string         `json:"productName"`
	SearchTerms []string       `json:"searchTerms"`
	Source      CategorySource `json:"source"`
}

// CategoryCacheEntry maps a normalized product name to catalog category tags.
type CategoryCacheEntry struct {
	ProductNameNormalized string         `json:"productNameNormalized"`
	Categories            []string       `json:"categories"`
	Source                CategorySource `json:"source"`
	CreatedAt             time.Time      `json:"createdAt"`
}

// ============================================================================
// SOURCE FETCHER REQUESTS
// ============================================================================

type NearbyStoresRequest struct {
	UserLat    *float64 `json:"userLat"`
	UserLng    *float64 `json:"userLng"`
	Radius     int      `json:"radius"`
	Categories []string `json:"categories"`
	MaxResults int      `json:"maxResults,omitempty"`
}

type ShoppingSearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type WebSearchRequest struct {
	ProductName string `json:"productName"`
	Location    string `json:"location,omitempty"`
}

// ============================================================================
// DEDUPLICATION
// ============================================================================

type DedupRequest struct {
	Stores     []Store `json:"stores"`
	MaxResults int     `json:"maxResults,omitempty"`
}

type DedupSummary struct {
	InputCount  int `json:"inputCount"`
	OutputCount int `json:"outputCount"`
	Removed     int `json:"removed"`
}

type DedupResponse struct {
	DeduplicatedStores []Store      `json:"deduplicatedStores"`
	Summary            DedupSummary `json:"summary"`
}

// DuplicateGroup is one set of input indices an AI model judged to be the same business.
type DuplicateGroup struct {
	Indices        []int  `json:"indices"`
	Reason         string `json:"reason,omitempty"`
	ConsolidatedID string `json:"consolidatedId,omitempty"`
}

type AIDedupResponse struct {
	DeduplicatedStores []Store          `json:"deduplicatedStores"`
	Groups             []DuplicateGroup `json:"groups"`
}

// ============================================================================
// LOCATION AUTOCOMPLETE & VERIFICATION
// ============================================================================

type AutocompleteRequest struct {
	Input string `json:"input"`
}

type Prediction struct {
	Description string `json:"description"`
	PlaceID     string `json:"placeId"`
}

type AutocompleteResponse struct {
	Predictions []Prediction `json:"predictions"`
}

type VerificationRequest struct {
	StoreName   string       `json:"storeName"`
	Address     string       `json:"address"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type VerificationResponse struct {
	Verified     bool     `json:"verified"`
	Name         string   `json:"name,omitempty"`
	Address      string   `json:"address,omitempty"`
	OpeningHours []string `json:"openingHours"`
	Rating       *float64 `json:"rating,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Website      string   `json:"website,omitempty"`
}

// ============================================================================
// FULL SEARCH PIPELINE
// ============================================================================

type SearchRequest struct {
	ProductName   string `json:"productName"`
	Location      string `json:"location"`
	Radius        int    `json:"radius,omitempty"`
	MaxResults    int    `json:"maxResults,omitempty"`
	IncludeOnline *bool  `json:"includeOnline,omitempty"`
	SearchID      string `json:"searchId,omitempty"`
}

type SearchResponse struct {
	Stores       []Store        `json:"stores"`
	TotalResults int            `json:"totalResults"`
	SearchID     string         `json:"searchId"`
	Location     Coordinates    `json:"location"`
	SearchTerms  []string       `json:"searchTerms"`
	Sources      map[string]int `json:"sources"`
	Message      string         `json:"message,omitempty"`
}

// SearchProgressEvent is pushed to websocket listeners while a search runs.
type SearchProgressEvent struct {
	Type     string `json:"type"`
	SearchID string `json:"searchId"`
	Source   string `json:"source,omitempty"`
	Count    int    `json:"count"`
	Error    string `json:"error,omitempty"`
}
