package workflow

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"hairfit/internal/domain"
)

// GenderFilter narrows the catalog by intended gender. GenderAll disables it.
type GenderFilter string

const (
	GenderAll    GenderFilter = "all"
	GenderMale   GenderFilter = GenderFilter(domain.GenderMale)
	GenderFemale GenderFilter = GenderFilter(domain.GenderFemale)
)

// ParseGenderFilter maps user input to a filter; empty or unknown is GenderAll.
func ParseGenderFilter(s string) GenderFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "man":
		return GenderMale
	case "female", "f", "woman":
		return GenderFemale
	case "neutral":
		return GenderFilter(domain.GenderNeutral)
	default:
		return GenderAll
	}
}

// MatchesGender applies the gender rule: neutral styles match every filter,
// explicit genders match their own filter and GenderAll.
func MatchesGender(s domain.Style, g GenderFilter) bool {
	if g == GenderAll || g == "" {
		return true
	}
	if s.Gender == domain.GenderNeutral || s.Gender == "" {
		return true
	}
	return GenderFilter(s.Gender) == g
}

// Filter returns the styles matching gender and tag, in catalog order. An
// empty tag disables tag filtering.
func Filter(styles []domain.Style, gender GenderFilter, tag string) []domain.Style {
	tag = strings.TrimSpace(tag)
	out := make([]domain.Style, 0, len(styles))
	for _, s := range styles {
		if !MatchesGender(s, gender) {
			continue
		}
		if tag != "" && !s.HasTag(tag) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Catalog holds the fetched style list, the active filter and the selection,
// and keeps the selection inside the filtered sequence.
type Catalog struct {
	mu       sync.RWMutex
	styles   []domain.Style
	gender   GenderFilter
	tag      string
	filtered []domain.Style
	selected *domain.Style
}

// NewCatalog returns an empty catalog filtered to GenderAll.
func NewCatalog() *Catalog {
	return &Catalog{gender: GenderAll}
}

// SetStyles replaces the catalog (whole-list refetch). It reports whether the
// selection changed as a result.
func (c *Catalog) SetStyles(styles []domain.Style) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.styles = append([]domain.Style(nil), styles...)
	return c.reconcileLocked()
}

// SetFilter changes the filter and reports whether the selection changed.
func (c *Catalog) SetFilter(gender GenderFilter, tag string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gender == "" {
		gender = GenderAll
	}
	c.gender = gender
	c.tag = strings.TrimSpace(tag)
	return c.reconcileLocked()
}

// Select makes id the current selection. Only styles in the filtered
// sequence are selectable.
func (c *Catalog) Select(id string) (domain.Style, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.filtered {
		if c.filtered[i].ID == id {
			s := c.filtered[i]
			c.selected = &s
			return s, nil
		}
	}
	return domain.Style{}, fmt.Errorf("%w: %s", domain.ErrStyleNotFound, id)
}

// Selected returns the current selection, if any.
func (c *Catalog) Selected() (domain.Style, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selected == nil {
		return domain.Style{}, false
	}
	return *c.selected, true
}

// Filtered returns a copy of the filtered sequence.
func (c *Catalog) Filtered() []domain.Style {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Style(nil), c.filtered...)
}

// Filter returns the active gender filter and tag.
func (c *Catalog) Filter() (GenderFilter, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gender, c.tag
}

// Tags returns the distinct tags across the whole catalog, sorted.
func (c *Catalog) Tags() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]struct{})
	var tags []string
	for _, s := range c.styles {
		for _, t := range s.Tags {
			if _, ok := seen[t]; ok || t == "" {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags
}

// Clear drops the selection but keeps the list and filter. The next catalog
// or filter update auto-selects again.
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
}

func (c *Catalog) reconcileLocked() bool {
	c.filtered = Filter(c.styles, c.gender, c.tag)
	if c.selected != nil {
		for i := range c.filtered {
			if c.filtered[i].ID == c.selected.ID {
				// Pick up refreshed metadata without reporting a change.
				s := c.filtered[i]
				c.selected = &s
				return false
			}
		}
	}
	if len(c.filtered) == 0 {
		changed := c.selected != nil
		c.selected = nil
		return changed
	}
	s := c.filtered[0]
	c.selected = &s
	return true
}
