package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LovationAdmin/storefinder-api/models"
)

func physicalStore(id, name, address string, dist float64) models.Store {
	return models.Store{
		ID:          id,
		Name:        name,
		Address:     address,
		Source:      models.SourceOpenStreetMap,
		Coordinates: &models.Coordinates{Lat: 45.46, Lng: 9.19},
		DistanceKm:  models.Float64Ptr(dist),
	}
}

func TestDedupeByAddressFirstWins(t *testing.T) {
	stores := []models.Store{
		physicalStore("osm-1", "Elettronica Roma", "via roma 1, milano", 1.2),
		physicalStore("osm-2", "Roma Elettronica Srl", "Via Roma 1, Milano", 1.3),
	}

	got := DedupeByAddress(stores, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "osm-1", got[0].ID)
}

func TestDedupeByAddressKeepsPlaceholders(t *testing.T) {
	stores := []models.Store{
		physicalStore("a", "A", models.AddressNotAvailable, 2),
		physicalStore("b", "B", models.AddressNotAvailable, 1),
		physicalStore("c", "C", "Location: 45.4600°, 9.1900°", 3),
		physicalStore("d", "D", "", 4),
	}

	got := DedupeByAddress(stores, 0)
	assert.Len(t, got, 4)
	assert.Equal(t, "b", got[0].ID)
}

func TestDedupeByAddressCapsThenSorts(t *testing.T) {
	stores := []models.Store{
		physicalStore("far", "Far", "1 High Street", 9),
		physicalStore("near", "Near", "2 High Street", 1),
		physicalStore("mid", "Mid", "3 High Street", 5),
	}

	got := DedupeByAddress(stores, 2)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"near", "far"}, []string{got[0].ID, got[1].ID})
}

func TestDedupeByAddressIdempotent(t *testing.T) {
	stores := []models.Store{
		physicalStore("1", "A", "123 Main Street.", 3),
		physicalStore("2", "B", "123 main st", 1),
		physicalStore("3", "C", "Hauptstraße 5", 2),
		physicalStore("4", "D", "Hauptstr. 5", 0.5),
	}

	once := DedupeByAddress(stores, 0)
	twice := DedupeByAddress(once, 0)
	assert.Equal(t, once, twice)
	assert.Len(t, once, 2)
}

func TestDedupeByIdentityMergesPrice(t *testing.T) {
	a := models.Store{ID: "osm-1", Name: "MediaWorld", Price: models.PriceContactStore, Source: models.SourceOpenStreetMap}
	b := models.Store{ID: "shop-1", Name: "mediaworld", Price: "€49.99", URL: "https://www.mediaworld.it/", Source: models.SourceGoogleShopping}

	got := DedupeByIdentity([]models.Store{a, b}, 0)
	require.Len(t, got, 1)

	merged := got[0]
	assert.Equal(t, "€49.99", merged.Price)
	assert.Equal(t, 2, merged.SourceCount)
	assert.True(t, merged.IsConsolidated)
	assert.Equal(t, "MediaWorld", merged.Name)
	assert.Equal(t, "https://www.mediaworld.it/", merged.URL)
	assert.True(t, strings.HasPrefix(merged.ID, "consolidated-"))
	assert.NotEqual(t, "osm-1", merged.ID)
	require.Len(t, merged.OriginalSources, 2)
	assert.Equal(t, "osm-1", merged.OriginalSources[0].ID)
	assert.Equal(t, "shop-1", merged.OriginalSources[1].ID)
}

func TestDedupeByIdentityURLKey(t *testing.T) {
	a := models.Store{ID: "1", Name: "Shop A", URL: "https://example.com/p/1"}
	b := models.Store{ID: "2", Name: "Totally different", URL: "http://www.example.com/p/1/"}
	c := models.Store{ID: "3", Name: "Other", URL: "https://other.com"}

	got := DedupeByIdentity([]models.Store{a, b, c}, 0)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].SourceCount)
	assert.Equal(t, "3", got[1].ID)
}

func TestDedupeByIdentityKeepsDistinctGoogleMapsPlaces(t *testing.T) {
	f := NewGoogleMapsFetcher("k")
	params := SearchParams{Lat: 45.4642, Lng: 9.19}

	var torino, buenosAires placeResult
	torino.PlaceID, torino.Name, torino.Vicinity = "ChIJ-torino", "MediaWorld", "Via Torino 2, Milano"
	torino.Geometry.Location.Lat, torino.Geometry.Location.Lng = 45.4627, 9.1862
	buenosAires.PlaceID, buenosAires.Name, buenosAires.Vicinity = "ChIJ-buenos-aires", "Unieuro", "Corso Buenos Aires 33, Milano"
	buenosAires.Geometry.Location.Lat, buenosAires.Geometry.Location.Lng = 45.4781, 9.2096

	stores := []models.Store{
		f.toStore(torino, "electronics", params),
		f.toStore(buenosAires, "electronics", params),
	}

	got := DedupeByIdentity(stores, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "MediaWorld", got[0].Name)
	assert.Equal(t, "Unieuro", got[1].Name)
	assert.False(t, got[0].IsConsolidated)
}

func TestDedupeByIdentityQueryDistinctURLs(t *testing.T) {
	stores := []models.Store{
		{ID: "1", Name: "Listing one", URL: "https://shop.example/item?id=1"},
		{ID: "2", Name: "Listing two", URL: "https://shop.example/item?id=2"},
		{ID: "3", Name: "Listing three", URL: "https://shop.example/item?id=1&utm_source=ads"},
	}

	got := DedupeByIdentity(stores, 0)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].SourceCount)
	assert.Equal(t, "2", got[1].ID)
}

func TestDedupeByIdentityKeepsDistantBranches(t *testing.T) {
	branch := func(id string, source models.StoreSource, lat, lng float64) models.Store {
		return models.Store{
			ID: id, Name: "Lidl", URL: "https://www.lidl.it", Source: source,
			Coordinates: &models.Coordinates{Lat: lat, Lng: lng},
		}
	}
	stores := []models.Store{
		branch("osm-1", models.SourceOpenStreetMap, 45.4627, 9.1862),
		branch("osm-2", models.SourceOpenStreetMap, 45.4781, 9.2096),
		// same shop as osm-2, about 100 m off
		branch("gm-1", models.SourceGoogleMaps, 45.4789, 9.2103),
		{ID: "web-1", Name: "LIDL", URL: "https://lidl.it/", Source: models.SourceWebSearch},
	}

	got := DedupeByIdentity(stores, 0)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].SourceCount)
	assert.Equal(t, "web-1", got[0].OriginalSources[1].ID)
	assert.Equal(t, 2, got[1].SourceCount)
	assert.Equal(t, "osm-2", got[1].OriginalSources[0].ID)
	assert.Equal(t, "gm-1", got[1].OriginalSources[1].ID)
}

func TestDedupeByIdentityThreeWayMerge(t *testing.T) {
	stores := []models.Store{
		{ID: "1", Name: "Apple Store", Description: "short"},
		{ID: "2", Name: "apple store", Description: "a much longer description", Phone: "+39 02 1234"},
		{ID: "3", Name: "Apple-Store", Coordinates: &models.Coordinates{Lat: 1, Lng: 2}, DistanceKm: models.Float64Ptr(3)},
	}

	got := DedupeByIdentity(stores, 0)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].SourceCount)
	assert.Len(t, got[0].OriginalSources, 3)
	assert.Equal(t, "a much longer description", got[0].Description)
	assert.Equal(t, "+39 02 1234", got[0].Phone)
	require.NotNil(t, got[0].DistanceKm)
	assert.Equal(t, 3.0, *got[0].DistanceKm)
}

func TestDedupeByIdentityPassesThroughAnonymous(t *testing.T) {
	stores := []models.Store{
		{ID: "x", Address: "somewhere"},
		{ID: "y", Address: "somewhere"},
	}

	got := DedupeByIdentity(stores, 0)
	assert.Len(t, got, 2)
	assert.Equal(t, "x", got[0].ID)
	assert.False(t, got[0].IsConsolidated)
}

func TestDedupeByIdentityDoesNotMutateInput(t *testing.T) {
	a := models.Store{ID: "1", Name: "Same", OpeningHours: []string{"Mo-Fr 9-18"}}
	b := models.Store{ID: "2", Name: "Same", Price: "€10"}

	DedupeByIdentity([]models.Store{a, b}, 0)
	assert.Equal(t, "1", a.ID)
	assert.Empty(t, a.Price)
	assert.Nil(t, a.OriginalSources)
}

func TestBetterValue(t *testing.T) {
	assert.Equal(t, "€5", betterValue(models.PriceContactStore, "€5"))
	assert.Equal(t, "€5", betterValue("€5", models.PriceNotAvailable))
	assert.Equal(t, "longer text", betterValue("short", "longer text"))
	assert.Equal(t, "same", betterValue("same", "tiny"))
}

func TestDedupSummaryFor(t *testing.T) {
	in := make([]models.Store, 5)
	out := make([]models.Store, 3)
	assert.Equal(t, models.DedupSummary{InputCount: 5, OutputCount: 3, Removed: 2}, DedupSummaryFor(in, out))
}
