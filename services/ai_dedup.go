package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LovationAdmin/storefinder-api/models"
)

// AIDeduplicator asks a language model which stores are the same business.
// It never fails a request: on any error the input comes back unchanged.
type AIDeduplicator struct {
	llm       LLMClient
	maxStores int
	timeout   time.Duration
}

func NewAIDeduplicator(llm LLMClient) *AIDeduplicator {
	return &AIDeduplicator{
		llm:       llm,
		maxStores: 120,
		timeout:   30 * time.Second,
	}
}

const aiDedupSystemPrompt = `You detect duplicate store listings. You answer with JSON only, no prose and no markdown.`

type aiDedupReply struct {
	Groups []struct {
		Indices []int  `json:"indices"`
		Reason  string `json:"reason"`
	} `json:"groups"`
}

// Dedupe groups duplicates and returns one consolidated record per group, at
// the position of the group's first member. When err is non-nil the returned
// stores are the input.
func (d *AIDeduplicator) Dedupe(ctx context.Context, stores []models.Store) ([]models.Store, []models.DuplicateGroup, error) {
	if len(stores) < 2 {
		return stores, []models.DuplicateGroup{}, nil
	}
	if len(stores) > d.maxStores {
		return stores, []models.DuplicateGroup{}, fmt.Errorf("too many stores for AI dedup: %d > %d", len(stores), d.maxStores)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	content, err := d.llm.Complete(ctx, aiDedupSystemPrompt, buildAIDedupPrompt(stores))
	if err != nil {
		log.Printf("[AIDedup] ⚠️  AI call failed, returning input: %v", err)
		return stores, []models.DuplicateGroup{}, err
	}

	groups, err := parseAIDedupReply(content, len(stores))
	if err != nil {
		log.Printf("[AIDedup] ❌ %v, returning input", err)
		return stores, []models.DuplicateGroup{}, err
	}

	out := applyDuplicateGroups(stores, groups)
	log.Printf("[AIDedup] ✅ %d groups, %d -> %d stores", len(groups), len(stores), len(out))
	return out, groups, nil
}

func buildAIDedupPrompt(stores []models.Store) string {
	var b strings.Builder
	b.WriteString(`Group the store listings below that represent the SAME physical business.

Rules:
1. Same name in the same city means the same business.
2. An official website and a third-party review or listing of the same place are the same business.
3. Minor name variants at the same address are the same business (e.g. "Apple Store" and "Apple Piazza Liberty").

Listings (index | name | address | url | source):
`)
	for i, s := range stores {
		fmt.Fprintf(&b, "%d | %s | %s | %s | %s\n", i, s.Name, s.Address, s.URL, s.Source)
	}
	b.WriteString(`
Return exactly this JSON shape, listing only groups with two or more indices:
{"groups":[{"indices":[0,3],"reason":"short explanation"}]}
Return {"groups":[]} when there are no duplicates.`)
	return b.String()
}

// parseAIDedupReply enforces the schema: indices in range, groups disjoint,
// at least two members per group.
func parseAIDedupReply(content string, n int) ([]models.DuplicateGroup, error) {
	var reply aiDedupReply
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAIResponse, err)
	}
	if reply.Groups == nil {
		return nil, fmt.Errorf("%w: missing groups array", ErrInvalidAIResponse)
	}

	used := make(map[int]bool)
	groups := make([]models.DuplicateGroup, 0, len(reply.Groups))
	for gi, g := range reply.Groups {
		if len(g.Indices) < 2 {
			return nil, fmt.Errorf("%w: group %d has fewer than 2 members", ErrInvalidAIResponse, gi)
		}
		for _, idx := range g.Indices {
			if idx < 0 || idx >= n {
				return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidAIResponse, idx)
			}
			if used[idx] {
				return nil, fmt.Errorf("%w: index %d appears twice", ErrInvalidAIResponse, idx)
			}
			used[idx] = true
		}
		groups = append(groups, models.DuplicateGroup{
			Indices: append([]int{}, g.Indices...),
			Reason:  g.Reason,
		})
	}
	return groups, nil
}

func applyDuplicateGroups(stores []models.Store, groups []models.DuplicateGroup) []models.Store {
	// index of a group's first member -> consolidated record
	heads := make(map[int]models.Store, len(groups))
	skip := make(map[int]bool)

	for gi := range groups {
		members := make([]models.Store, 0, len(groups[gi].Indices))
		for _, idx := range groups[gi].Indices {
			members = append(members, stores[idx])
		}
		merged := consolidateGroup(members)
		groups[gi].ConsolidatedID = merged.ID

		head := groups[gi].Indices[0]
		heads[head] = merged
		for _, idx := range groups[gi].Indices[1:] {
			skip[idx] = true
		}
	}

	out := make([]models.Store, 0, len(stores))
	for i, s := range stores {
		if skip[i] {
			continue
		}
		if merged, ok := heads[i]; ok {
			out = append(out, merged)
			continue
		}
		out = append(out, s)
	}
	return out
}

// consolidateGroup builds one record from the first member, filling gaps
// from the others and naming every field it borrowed.
func consolidateGroup(members []models.Store) models.Store {
	base := members[0].Clone()
	fields := []string{}
	borrowed := func(field string) {
		for _, f := range fields {
			if f == field {
				return
			}
		}
		fields = append(fields, field)
	}

	refs := make([]models.SourceRef, 0, len(members))
	for _, m := range members {
		if m.IsConsolidated && len(m.OriginalSources) > 0 {
			refs = append(refs, m.OriginalSources...)
		} else {
			refs = append(refs, m.Ref())
		}
	}

	for _, m := range members[1:] {
		if IsPlaceholderAddress(base.Address) && !IsPlaceholderAddress(m.Address) {
			base.Address = m.Address
			borrowed("address")
		}
		if base.Phone == "" && m.Phone != "" {
			base.Phone = m.Phone
			borrowed("phone")
		}
		if base.URL == "" && m.URL != "" {
			base.URL = m.URL
			borrowed("url")
		}
		if p := betterValue(base.Price, m.Price); p != base.Price {
			base.Price = p
			borrowed("price")
		}
		if d := betterValue(base.Description, m.Description); d != base.Description {
			base.Description = d
			borrowed("description")
		}
		if len(base.OpeningHours) == 0 && len(m.OpeningHours) > 0 {
			base.OpeningHours = append([]string{}, m.OpeningHours...)
			borrowed("openingHours")
		}
		if base.Coordinates == nil && m.Coordinates != nil {
			c := *m.Coordinates
			base.Coordinates = &c
			if m.DistanceKm != nil {
				dist := *m.DistanceKm
				base.DistanceKm = &dist
			}
			borrowed("coordinates")
		}
		if base.Rating == nil && m.Rating != nil {
			r := *m.Rating
			base.Rating = &r
			borrowed("rating")
		}
	}

	base.ID = "consolidated-" + uuid.New().String()
	base.IsConsolidated = true
	base.OriginalSources = refs
	base.SourceCount = len(refs)
	base.ConsolidatedFields = fields
	return base
}
