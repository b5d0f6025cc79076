package research

import (
	"context"
	"log/slog"
	"strings"

	"forge-research/internal/ai"
	"forge-research/internal/llmjson"
	"forge-research/internal/model"
	"forge-research/internal/topichash"
)

// maxDiscoveredCommunities bounds the discovery output.
const maxDiscoveredCommunities = 10

// Cache is the discovery result cache, keyed by topic hash. Get reports a
// miss for absent, expired, or unreadable entries.
type Cache interface {
	Get(ctx context.Context, hash string) ([]model.CommunityInfo, bool)
	Put(ctx context.Context, hash, prompt, company string, communities []model.CommunityInfo) error
}

// Discovery produces a ranked list of candidate communities for a topic,
// trying the cache, then the completion service, then the static fallback.
type Discovery struct {
	Cache     Cache
	Templates Templates
	AI        ai.Completer
	Fallback  FallbackList
}

// rawCommunity is the lenient shape accepted from the completion service.
type rawCommunity struct {
	Name            string   `json:"name"`
	RelevanceScore  *float64 `json:"relevanceScore"`
	ActivityLevel   string   `json:"activityLevel"`
	Themes          []string `json:"themes"`
	ExpectedQuality string   `json:"expectedQuality"`
}

// Discover returns candidate communities for the topic. It never fails: a
// completion-service or parse failure degrades to the static keyword
// fallback. Cache hits skip both the completion call and the write-back.
func (d *Discovery) Discover(ctx context.Context, tr *Trace, prompt, company string) []model.CommunityInfo {
	hash := topichash.Sum(prompt, company)
	if d.Cache != nil {
		if communities, ok := d.Cache.Get(ctx, hash); ok {
			tr.Add("discovery", "cache hit: %d communities", len(communities))
			return communities
		}
	}

	communities := d.viaCompletion(ctx, tr, prompt, company)
	if len(communities) == 0 {
		communities = d.Fallback.Select(prompt)
		tr.Add("discovery", "static fallback: %d communities", len(communities))
	}

	if d.Cache != nil && len(communities) > 0 {
		if err := d.Cache.Put(ctx, hash, prompt, company, communities); err != nil {
			slog.Warn("research: discovery cache write failed", "hash", hash, "err", err)
		}
	}
	return communities
}

func (d *Discovery) viaCompletion(ctx context.Context, tr *Trace, prompt, company string) []model.CommunityInfo {
	tmpl := loadTemplate(ctx, d.Templates, tmplDiscovery, defaultDiscoveryTemplate)
	user := renderTopic(tmpl, prompt, company)
	reply, _, err := d.AI.Complete(ctx, discoverySystemPrompt, user)
	if err != nil {
		slog.Warn("research: discovery completion failed", "err", err)
		tr.Add("discovery", "completion failed: %v", err)
		return nil
	}
	var raw []rawCommunity
	if err := llmjson.Unmarshal(reply, &raw); err != nil {
		slog.Warn("research: discovery reply unparseable", "err", err)
		tr.Add("discovery", "reply unparseable: %v", err)
		return nil
	}
	out := make([]model.CommunityInfo, 0, len(raw))
	for _, rc := range raw {
		name := normalizeCommunityName(rc.Name)
		if name == "" {
			continue
		}
		out = append(out, model.CommunityInfo{
			Name:            name,
			RelevanceScore:  clampScore(rc.RelevanceScore),
			ActivityLevel:   coerceLevel(rc.ActivityLevel),
			Themes:          coerceThemes(rc.Themes),
			ExpectedQuality: coerceLevel(rc.ExpectedQuality),
		})
		if len(out) >= maxDiscoveredCommunities {
			break
		}
	}
	tr.Add("discovery", "completion suggested %d communities", len(out))
	return out
}

// normalizeCommunityName strips the platform namespace prefix.
func normalizeCommunityName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "/r/")
	name = strings.TrimPrefix(name, "r/")
	return strings.TrimSpace(name)
}

func clampScore(v *float64) int {
	if v == nil {
		return 5
	}
	s := int(*v)
	if s < 1 {
		return 1
	}
	if s > 10 {
		return 10
	}
	return s
}

func coerceLevel(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "low":
		return "low"
	case "high":
		return "high"
	default:
		return "medium"
	}
}

func coerceThemes(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
