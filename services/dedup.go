package services

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/LovationAdmin/storefinder-api/models"
	"github.com/LovationAdmin/storefinder-api/utils"
)

// ============================================================================
// ADDRESS-BASED DEDUP (single source)
// ============================================================================

// DedupeByAddress keeps the first store for each normalized address. Stores
// with no usable address are always kept. The result is capped at maxResults
// (0 = no cap) and then sorted by ascending distance.
func DedupeByAddress(stores []models.Store, maxResults int) []models.Store {
	seen := make(map[string]bool, len(stores))
	out := make([]models.Store, 0, len(stores))

	for _, s := range stores {
		if !IsPlaceholderAddress(s.Address) {
			key := NormalizeAddress(s.Address)
			if key != "" {
				if seen[key] {
					continue
				}
				seen[key] = true
			}
		}
		out = append(out, s)
	}

	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	SortByDistance(out)
	return out
}

// SortByDistance orders stores by distanceKm; stores without one go last.
func SortByDistance(stores []models.Store) {
	sort.SliceStable(stores, func(i, j int) bool {
		return distanceOrInf(stores[i]) < distanceOrInf(stores[j])
	})
}

func distanceOrInf(s models.Store) float64 {
	if s.DistanceKm == nil {
		return math.Inf(1)
	}
	return *s.DistanceKm
}

// ============================================================================
// IDENTITY-BASED DEDUP (cross source)
// ============================================================================

// sameStoreMaxKm is how far apart two located records may be and still be
// merged as one store. Chains share names and websites across branches.
const sameStoreMaxKm = 0.5

// DedupeByIdentity merges stores that share a URL, a domain and name, or a
// normalized name. The first record seen is the base of the merge. Two records
// that both have coordinates further apart than sameStoreMaxKm are never merged.
func DedupeByIdentity(stores []models.Store, maxResults int) []models.Store {
	out := make([]models.Store, 0, len(stores))
	index := make(map[string][]int)

	for _, s := range stores {
		keys := identityKeys(s)
		if len(keys) == 0 {
			out = append(out, s.Clone())
			continue
		}

		match := -1
	lookup:
		for _, k := range keys {
			for _, i := range index[k] {
				if !farApart(out[i], s) {
					match = i
					break lookup
				}
			}
		}

		if match < 0 {
			out = append(out, s.Clone())
			match = len(out) - 1
		} else {
			out[match] = mergeStores(out[match], s)
		}

		for _, k := range keys {
			if !containsIndex(index[k], match) {
				index[k] = append(index[k], match)
			}
		}
	}

	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

func farApart(a, b models.Store) bool {
	if a.Coordinates == nil || b.Coordinates == nil {
		return false
	}
	return utils.DistanceBetween(a.Coordinates, b.Coordinates) > sameStoreMaxKm
}

func containsIndex(list []int, i int) bool {
	for _, v := range list {
		if v == i {
			return true
		}
	}
	return false
}

func identityKeys(s models.Store) []string {
	name := NormalizeName(s.Name)
	url := NormalizeURL(s.URL)
	if name == "" && url == "" {
		return nil
	}

	var keys []string
	if url != "" {
		keys = append(keys, "url:"+url)
		if name != "" {
			keys = append(keys, "domain:"+DomainOf(s.URL)+"|"+name)
		}
	}
	if name != "" {
		keys = append(keys, "name:"+name)
	}
	return keys
}

// mergeStores folds other into base and returns the consolidated record.
func mergeStores(base, other models.Store) models.Store {
	if !base.IsConsolidated {
		base.OriginalSources = []models.SourceRef{base.Ref()}
		base.SourceCount = 1
	}
	base.OriginalSources = append(base.OriginalSources, other.Ref())
	base.SourceCount++
	base.IsConsolidated = true

	base.Price = betterValue(base.Price, other.Price)
	base.Description = betterValue(base.Description, other.Description)

	if base.Phone == "" {
		base.Phone = other.Phone
	}
	if base.URL == "" {
		base.URL = other.URL
	}
	if len(base.OpeningHours) == 0 && len(other.OpeningHours) > 0 {
		base.OpeningHours = append([]string{}, other.OpeningHours...)
	}
	if base.Coordinates == nil && other.Coordinates != nil {
		c := *other.Coordinates
		base.Coordinates = &c
		if other.DistanceKm != nil {
			d := *other.DistanceKm
			base.DistanceKm = &d
		}
	}
	if base.Rating == nil && other.Rating != nil {
		r := *other.Rating
		base.Rating = &r
	}
	if IsPlaceholderAddress(base.Address) && !IsPlaceholderAddress(other.Address) {
		base.Address = other.Address
	}

	base.ID = "consolidated-" + uuid.New().String()
	return base
}

// betterValue prefers a present, non-placeholder value, then the longer one.
func betterValue(current, candidate string) string {
	curOK := !isPlaceholderValue(current)
	candOK := !isPlaceholderValue(candidate)

	switch {
	case candOK && !curOK:
		return candidate
	case curOK && !candOK:
		return current
	case len(candidate) > len(current):
		return candidate
	default:
		return current
	}
}

func isPlaceholderValue(v string) bool {
	switch v {
	case "", models.PriceContactStore, models.PriceNotAvailable, models.DescriptionNotAvailable:
		return true
	}
	return false
}

// DedupSummaryFor describes what a dedup pass removed.
func DedupSummaryFor(in, out []models.Store) models.DedupSummary {
	return models.DedupSummary{
		InputCount:  len(in),
		OutputCount: len(out),
		Removed:     len(in) - len(out),
	}
}
