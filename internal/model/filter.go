package model

import (
	"strings"
	"time"
)

// PriceRange is an inclusive [Min, Max] price interval.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DateRange is an inclusive [Start, End] calendar-date interval.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FilterCriteria is the ephemeral filter state a browsing session holds over
// the event catalog. It is never persisted.
type FilterCriteria struct {
	SearchQuery string     `json:"search_query"`
	Location    string     `json:"location"`
	Category    string     `json:"category"`
	PriceRange  PriceRange `json:"price_range"`
	DateRange   *DateRange `json:"date_range,omitempty"`
}

// DefaultFilters returns the criteria state before any filtering: empty text
// fields, price range [0, 1000], no date range.
func DefaultFilters() FilterCriteria {
	return FilterCriteria{PriceRange: PriceRange{Min: 0, Max: 1000}}
}

// FilterUpdate is a partial change to FilterCriteria. Nil fields keep their
// current value. ClearDateRange unsets the date range regardless of DateRange.
type FilterUpdate struct {
	SearchQuery    *string     `json:"search_query"`
	Location       *string     `json:"location"`
	Category       *string     `json:"category"`
	PriceRange     *PriceRange `json:"price_range"`
	DateRange      *DateRange  `json:"date_range"`
	ClearDateRange bool        `json:"clear_date_range,omitempty"`
}

// Apply merges u into f field-wise and returns the result.
func (f FilterCriteria) Apply(u FilterUpdate) FilterCriteria {
	if u.SearchQuery != nil {
		f.SearchQuery = *u.SearchQuery
	}
	if u.Location != nil {
		f.Location = *u.Location
	}
	if u.Category != nil {
		f.Category = *u.Category
	}
	if u.PriceRange != nil {
		f.PriceRange = *u.PriceRange
	}
	if u.DateRange != nil {
		dr := *u.DateRange
		f.DateRange = &dr
	}
	if u.ClearDateRange {
		f.DateRange = nil
	}
	return f
}

// Matches reports whether e satisfies every active predicate in f:
// case-insensitive substring search over title/description/location, substring
// location match, exact category match, inclusive price range, and inclusive
// date range when set. Malformed criteria (inverted ranges) simply match
// nothing; Matches never errors.
func (f FilterCriteria) Matches(e Event) bool {
	if q := strings.ToLower(strings.TrimSpace(f.SearchQuery)); q != "" {
		if !strings.Contains(strings.ToLower(e.Title), q) &&
			!strings.Contains(strings.ToLower(e.Description), q) &&
			!strings.Contains(strings.ToLower(e.Location), q) {
			return false
		}
	}
	if f.Location != "" &&
		!strings.Contains(strings.ToLower(e.Location), strings.ToLower(f.Location)) {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if e.Price < f.PriceRange.Min || e.Price > f.PriceRange.Max {
		return false
	}
	if f.DateRange != nil {
		if e.Date.Before(f.DateRange.Start) || e.Date.After(f.DateRange.End) {
			return false
		}
	}
	return true
}
