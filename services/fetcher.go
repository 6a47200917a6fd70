package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LovationAdmin/storefinder-api/models"
)

// StoreFetcher queries one external provider and maps its answer into Stores.
type StoreFetcher interface {
	Source() models.StoreSource
	Search(ctx context.Context, params SearchParams) ([]models.Store, error)
}

// SearchParams is the union of what the fetchers need. Each one reads only
// the fields relevant to its provider.
type SearchParams struct {
	Lat          float64
	Lng          float64
	RadiusMeters int
	Categories   []string
	Query        string
	ProductName  string
	Location     string
	Limit        int
}

// storeID builds a synthetic id for records without a provider id.
func storeID(source models.StoreSource, index int) string {
	prefix := strings.ToLower(strings.ReplaceAll(string(source), " ", "-"))
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), index)
}

// stripCodeFence removes the ```json fences models like to wrap JSON in.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)
	return strings.Trim(content, "`")
}
