package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"time"
)

// Embedder turns texts into vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// OpenAIEmbedder calls the OpenAI embeddings endpoint.
type OpenAIEmbedder struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewOpenAIEmbedder(apiKey string) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		apiKey:  apiKey,
		baseURL: "https://api.openai.com/v1/embeddings",
		model:   "text-embedding-3-small",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (e *OpenAIEmbedder) WithBaseURL(baseURL string) *OpenAIEmbedder {
	e.baseURL = baseURL
	return e
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", ErrAIUnavailable)
	}

	jsonData, err := json.Marshal(embeddingRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result embeddingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("OpenAI API error: %s", result.Error.Message)
	}
	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrInvalidAIResponse, len(texts), len(result.Data))
	}

	out := make([][]float64, len(texts))
	for _, d := range result.Data {
		if d.Index < 0 || d.Index >= len(out) || len(d.Embedding) == 0 {
			return nil, fmt.Errorf("%w: bad embedding index %d", ErrInvalidAIResponse, d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// ============================================================================
// SIMILARITY RANKING
// ============================================================================

// AICategorizer ranks the category table by cosine similarity to a product name.
type AICategorizer struct {
	embedder      Embedder
	categories    []CategoryDefinition
	topN          int
	minSimilarity float64
}

func NewAICategorizer(embedder Embedder, categories []CategoryDefinition) *AICategorizer {
	return &AICategorizer{
		embedder:      embedder,
		categories:    categories,
		topN:          3,
		minSimilarity: 0.2,
	}
}

type scoredCategory struct {
	tag   string
	score float64
}

// PredictCategories returns up to topN OSM tags, best first.
func (a *AICategorizer) PredictCategories(ctx context.Context, productName string) ([]string, error) {
	if a.embedder == nil {
		return nil, ErrAIUnavailable
	}

	texts := make([]string, 0, len(a.categories)+1)
	texts = append(texts, productName)
	for _, c := range a.categories {
		texts = append(texts, c.Description)
	}

	vectors, err := a.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: embedding count mismatch", ErrInvalidAIResponse)
	}

	product := vectors[0]
	scored := make([]scoredCategory, 0, len(a.categories))
	for i, c := range a.categories {
		scored = append(scored, scoredCategory{tag: c.OSMTag, score: cosine(product, vectors[i+1])})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	tags := []string{}
	for _, sc := range scored {
		if len(tags) == a.topN {
			break
		}
		if sc.score < a.minSimilarity {
			break
		}
		tags = append(tags, sc.tag)
	}

	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: no category above similarity threshold", ErrInvalidAIResponse)
	}
	return tags, nil
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
