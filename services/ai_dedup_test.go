package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LovationAdmin/storefinder-api/models"
)

func aiDedupFixture() []models.Store {
	return []models.Store{
		{ID: "a", Name: "Apple Store", Address: "Piazza del Liberty 1, Milano", Source: models.SourceGoogleMaps,
			Coordinates: &models.Coordinates{Lat: 45.4655, Lng: 9.1935}, DistanceKm: models.Float64Ptr(0.4)},
		{ID: "b", Name: "Feltrinelli", Address: "Piazza Duomo, Milano", Source: models.SourceOpenStreetMap},
		{ID: "c", Name: "Apple Piazza Liberty", Address: models.AddressNotAvailable, URL: "https://apple.com/it/retail/piazzaliberty",
			Phone: "+39 02 0000", Price: "€1,229", Source: models.SourceWebSearch},
	}
}

func TestAIDeduplicatorMergesGroups(t *testing.T) {
	llm := &fakeLLM{reply: `{"groups":[{"indices":[0,2],"reason":"same Apple store at Piazza Liberty"}]}`}
	stores := aiDedupFixture()

	out, groups, err := NewAIDeduplicator(llm).Dedupe(context.Background(), stores)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Len(t, groups, 1)

	merged := out[0]
	assert.Equal(t, "Apple Store", merged.Name)
	assert.Equal(t, "Piazza del Liberty 1, Milano", merged.Address)
	assert.Equal(t, "+39 02 0000", merged.Phone)
	assert.Equal(t, "€1,229", merged.Price)
	assert.True(t, merged.IsConsolidated)
	assert.Equal(t, 2, merged.SourceCount)
	assert.ElementsMatch(t, []string{"phone", "url", "price"}, merged.ConsolidatedFields)
	assert.Equal(t, merged.ID, groups[0].ConsolidatedID)
	assert.Equal(t, "b", out[1].ID)

	assert.Contains(t, llm.prompt, "0 | Apple Store")
	assert.Contains(t, llm.prompt, "Same name in the same city")
}

func TestAIDeduplicatorFailOpen(t *testing.T) {
	replies := map[string]string{
		"not json":       "I think 0 and 2 are the same",
		"out of range":   `{"groups":[{"indices":[0,7]}]}`,
		"overlapping":    `{"groups":[{"indices":[0,1]},{"indices":[1,2]}]}`,
		"single member":  `{"groups":[{"indices":[1]}]}`,
		"missing groups": `{"result":"none"}`,
	}

	for name, reply := range replies {
		t.Run(name, func(t *testing.T) {
			stores := aiDedupFixture()
			out, groups, err := NewAIDeduplicator(&fakeLLM{reply: reply}).Dedupe(context.Background(), stores)
			assert.ErrorIs(t, err, ErrInvalidAIResponse)
			assert.Equal(t, stores, out)
			assert.Empty(t, groups)
		})
	}
}

func TestAIDeduplicatorLLMError(t *testing.T) {
	stores := aiDedupFixture()
	out, _, err := NewAIDeduplicator(&fakeLLM{err: errors.New("timeout")}).Dedupe(context.Background(), stores)
	assert.Error(t, err)
	assert.Equal(t, stores, out)
}

func TestAIDeduplicatorNoGroups(t *testing.T) {
	stores := aiDedupFixture()
	out, groups, err := NewAIDeduplicator(&fakeLLM{reply: "```json\n{\"groups\":[]}\n```"}).Dedupe(context.Background(), stores)
	require.NoError(t, err)
	assert.Equal(t, stores, out)
	assert.Empty(t, groups)
}

func TestAIDeduplicatorSkipsTinyInput(t *testing.T) {
	llm := &fakeLLM{}
	out, _, err := NewAIDeduplicator(llm).Dedupe(context.Background(), aiDedupFixture()[:1])
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, 0, llm.calls)
}
