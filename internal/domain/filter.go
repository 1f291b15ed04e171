package domain

import "strings"

// FilterCriteria is the buyer's search filter. Every dimension is optional;
// an absent field means "no constraint". Combined filters AND together.
type FilterCriteria struct {
	LivestockType *LivestockType `json:"livestock_type,omitempty"`
	MinPrice      *float64       `json:"min_price,omitempty"`
	MaxPrice      *float64       `json:"max_price,omitempty"`
	Region        string         `json:"region,omitempty"`
	Location      string         `json:"location,omitempty"`
}

// Matches evaluates the conjunction of all present predicates against a
// listing. A min-price filter keeps listings whose floor is at or above the
// filter value; a max-price filter keeps listings whose ceiling is at or
// below it. Region and location are case-insensitive substring matches over
// the public location fields.
func (f FilterCriteria) Matches(l *Listing) bool {
	if f.LivestockType != nil && l.LivestockType != *f.LivestockType {
		return false
	}
	if f.MinPrice != nil && l.MinPrice < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.MaxPrice > *f.MaxPrice {
		return false
	}
	if f.Region != "" && !containsFold(f.Region, l.Region, l.Country) {
		return false
	}
	if f.Location != "" && !containsFold(f.Location, l.Locality, l.FormattedAddress) {
		return false
	}
	return true
}

func containsFold(needle string, haystacks ...string) bool {
	n := strings.ToLower(needle)
	for _, h := range haystacks {
		if h != "" && strings.Contains(strings.ToLower(h), n) {
			return true
		}
	}
	return false
}
