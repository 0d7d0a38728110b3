// Package classify maps note text to a category via ordered keyword rules.
package classify

import (
	"strings"

	"github.com/starford/munin/internal/models"
)

// Rule binds a category to the keyword phrases that select it. Matching is
// case-insensitive substring containment.
type Rule struct {
	Category models.Category
	Keywords []string
}

// DefaultRules returns the built-in keyword table in priority order.
// Overlaps between categories are resolved by this order alone.
func DefaultRules() []Rule {
	return []Rule{
		{models.CategoryDecision, []string{"decide", "decision", "chose", "choose", "agreed", "approved"}},
		{models.CategoryTodo, []string{"todo", "to-do", "task", "follow up", "follow-up", "need to", "remind"}},
		{models.CategoryPreference, []string{"prefer", "likes", "dislikes", "wants", "always", "never"}},
		{models.CategoryProject, []string{"project", "milestone", "release", "commit", "deploy", "roadmap"}},
		{models.CategoryPerson, []string{"met", "spoke with", "talked to", "contact", "person", "team"}},
	}
}

// Classifier assigns categories using an injected rule table, so tests and
// configuration can substitute their own keywords.
type Classifier struct {
	rules []Rule
}

// New creates a Classifier. A nil or empty rule list falls back to DefaultRules.
func New(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify returns the first category whose keywords appear in text,
// or CategoryNote when none match. Total and deterministic.
func (c *Classifier) Classify(text string) models.Category {
	t := strings.ToLower(text)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(t, kw) {
				return r.Category
			}
		}
	}
	return models.CategoryNote
}

// Merge applies per-category keyword overrides to a base rule table.
// Categories already present keep their priority position and get the
// override's keyword list; unknown-to-base categories are appended before
// the implicit fallback.
func Merge(base []Rule, overrides map[models.Category][]string) []Rule {
	if len(overrides) == 0 {
		return base
	}
	out := make([]Rule, 0, len(base)+len(overrides))
	seen := make(map[models.Category]struct{}, len(base))
	for _, r := range base {
		if kws, ok := overrides[r.Category]; ok {
			r = Rule{Category: r.Category, Keywords: kws}
		}
		seen[r.Category] = struct{}{}
		out = append(out, r)
	}
	for _, cat := range models.Categories() {
		if _, ok := seen[cat]; ok || cat == models.CategoryNote {
			continue
		}
		if kws, ok := overrides[cat]; ok {
			out = append(out, Rule{Category: cat, Keywords: kws})
		}
	}
	return out
}
