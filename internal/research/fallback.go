package research

import (
	"fmt"
	"os"
	"strings"

	"forge-research/internal/model"

	"gopkg.in/yaml.v3"
)

// maxFallbackCommunities caps the static fallback list.
const maxFallbackCommunities = 5

// FallbackRule maps prompt keywords to domain-specific communities.
type FallbackRule struct {
	Keywords    []string `yaml:"keywords"`
	Communities []string `yaml:"communities"`
}

// FallbackList is the static community list used when discovery via the
// completion service fails. Keyword-matched communities lead; the general
// tail is always appended.
type FallbackList struct {
	Rules   []FallbackRule `yaml:"rules"`
	General []string       `yaml:"general"`
}

// DefaultFallback returns the compiled-in fallback list.
func DefaultFallback() FallbackList {
	return FallbackList{
		Rules: []FallbackRule{
			{Keywords: []string{"software", "developer", "programming", "code", "api"}, Communities: []string{"programming", "webdev"}},
			{Keywords: []string{"marketing", "seo", "brand", "advertis"}, Communities: []string{"marketing", "Entrepreneur"}},
			{Keywords: []string{"run", "running", "fitness", "workout", "training"}, Communities: []string{"running", "fitness"}},
			{Keywords: []string{"travel", "trip", "vacation"}, Communities: []string{"travel", "solotravel"}},
			{Keywords: []string{"food", "recipe", "cooking"}, Communities: []string{"Cooking", "AskCulinary"}},
			{Keywords: []string{"money", "finance", "invest", "budget"}, Communities: []string{"personalfinance", "investing"}},
			{Keywords: []string{"health", "sleep", "diet", "wellness"}, Communities: []string{"Health", "AskDocs"}},
		},
		General: []string{"AskReddit", "NoStupidQuestions", "explainlikeimfive"},
	}
}

// LoadFallbackFile reads a fallback list from a YAML file.
func LoadFallbackFile(path string) (FallbackList, error) {
	var fl FallbackList
	b, err := os.ReadFile(path)
	if err != nil {
		return fl, err
	}
	if err := yaml.Unmarshal(b, &fl); err != nil {
		return fl, fmt.Errorf("research: fallback file %s: %w", path, err)
	}
	if len(fl.General) == 0 && len(fl.Rules) == 0 {
		return fl, fmt.Errorf("research: fallback file %s is empty", path)
	}
	return fl, nil
}

// maxNicheCommunities bounds keyword-selected communities so the general
// tail is never squeezed out.
const maxNicheCommunities = 2

// Select builds the static community list for a prompt: at most
// maxNicheCommunities keyword-matched communities, then the general tail,
// capped at maxFallbackCommunities.
func (fl FallbackList) Select(prompt string) []model.CommunityInfo {
	lower := strings.ToLower(prompt)
	names := make([]string, 0, maxFallbackCommunities)
	seen := map[string]struct{}{}
	for _, rule := range fl.Rules {
		if len(names) >= maxNicheCommunities {
			break
		}
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				for _, c := range rule.Communities {
					if len(names) >= maxNicheCommunities {
						break
					}
					if _, ok := seen[c]; !ok {
						seen[c] = struct{}{}
						names = append(names, c)
					}
				}
				break
			}
		}
	}
	niche := len(names)
	for _, c := range fl.General {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			names = append(names, c)
		}
	}
	if len(names) > maxFallbackCommunities {
		names = names[:maxFallbackCommunities]
	}
	out := make([]model.CommunityInfo, 0, len(names))
	for i, name := range names {
		score := 4
		if i < niche {
			score = 6
		}
		out = append(out, model.CommunityInfo{
			Name:            name,
			RelevanceScore:  score,
			ActivityLevel:   "medium",
			Themes:          []string{},
			ExpectedQuality: "medium",
		})
	}
	return out
}
