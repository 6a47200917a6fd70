package models

// ============================================================================
// STORE MODEL
// ============================================================================

// StoreSource identifies the fetcher that produced a Store.
type StoreSource string

const (
	SourceOpenStreetMap  StoreSource = "OpenStreetMap"
	SourceGoogleMaps     StoreSource = "Google Maps"
	SourceGoogleShopping StoreSource = "Google Shopping"
	SourceWebSearch      StoreSource = "Web Search"
	SourceAICrawl        StoreSource = "AI Crawl"
)

// Placeholder strings written by fetchers when a provider has no value.
const (
	AddressNotAvailable     = "Address not available"
	PriceContactStore       = "Contact store for pricing"
	PriceNotAvailable       = "Price not available"
	DescriptionNotAvailable = "No description available"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SourceRef keeps the identity of a record folded into a consolidated Store.
type SourceRef struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Source  StoreSource `json:"source"`
	URL     string      `json:"url,omitempty"`
	Address string      `json:"address,omitempty"`
}

// Store is one candidate location or online listing that might sell the product.
type Store struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	StoreType    string       `json:"storeType"`
	Address      string       `json:"address"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	DistanceKm   *float64     `json:"distanceKm"`
	Phone        string       `json:"phone,omitempty"`
	URL          string       `json:"url,omitempty"`
	Source       StoreSource  `json:"source"`
	OpeningHours []string     `json:"openingHours"`
	Price        string       `json:"price,omitempty"`
	Description  string       `json:"description,omitempty"`
	Rating       *float64     `json:"rating,omitempty"`

	// Set when the record is the result of merging duplicates
	SourceCount        int         `json:"sourceCount,omitempty"`
	IsConsolidated     bool        `json:"isConsolidated,omitempty"`
	OriginalSources    []SourceRef `json:"originalSources,omitempty"`
	ConsolidatedFields []string    `json:"consolidatedFields,omitempty"`
}

// Ref returns the identity of the store as recorded in OriginalSources.
func (s Store) Ref() SourceRef {
	return SourceRef{
		ID:      s.ID,
		Name:    s.Name,
		Source:  s.Source,
		URL:     s.URL,
		Address: s.Address,
	}
}

// IsOnline reports whether the store is a listing without physical coordinates.
func (s Store) IsOnline() bool {
	return s.Coordinates == nil || s.DistanceKm == nil
}

// Clone returns a deep copy so merges never alias caller slices.
func (s Store) Clone() Store {
	out := s
	if s.Coordinates != nil {
		c := *s.Coordinates
		out.Coordinates = &c
	}
	if s.DistanceKm != nil {
		d := *s.DistanceKm
		out.DistanceKm = &d
	}
	if s.Rating != nil {
		r := *s.Rating
		out.Rating = &r
	}
	out.OpeningHours = append([]string{}, s.OpeningHours...)
	if s.OriginalSources != nil {
		out.OriginalSources = append([]SourceRef{}, s.OriginalSources...)
	}
	if s.ConsolidatedFields != nil {
		out.ConsolidatedFields = append([]string{}, s.ConsolidatedFields...)
	}
	return out
}

// Float64Ptr is a small helper for optional numeric fields.
func Float64Ptr(v float64) *float64 {
	return &v
}
