package geo

import (
	"fmt"
	"math"
	"strings"
)

// Region is a named administrative area with a bounding box. Fuzzed
// coordinates are clamped to the box so a public point never wanders into a
// neighboring region while carrying this region's name.
type Region struct {
	Country  string
	Region   string
	Locality string
	MinLat   float64
	MaxLat   float64
	MinLng   float64
	MaxLng   float64
}

// Contains reports whether the point falls inside the region's bounding box.
func (r Region) Contains(lat, lng float64) bool {
	return lat >= r.MinLat && lat <= r.MaxLat && lng >= r.MinLng && lng <= r.MaxLng
}

// FormattedAddress joins the non-empty name parts, most specific first.
func (r Region) FormattedAddress() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.Locality, r.Region, r.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// RegionResolver maps a precise point to its administrative region. The
// fuzzer resolves the precise point, not the perturbed one, so the public
// record always names the true region.
type RegionResolver interface {
	Resolve(lat, lng float64) Region
}

// TableResolver resolves against a fixed region table, falling back to a
// one-degree grid cell when no entry contains the point. The grid fallback
// still gives the fuzzer a box to clamp into.
type TableResolver struct {
	regions []Region
}

func NewTableResolver(regions ...Region) *TableResolver {
	return &TableResolver{regions: regions}
}

func (t *TableResolver) Resolve(lat, lng float64) Region {
	for _, r := range t.regions {
		if r.Contains(lat, lng) {
			return r
		}
	}
	return gridCell(lat, lng)
}

// gridCell names the one-degree cell containing the point.
func gridCell(lat, lng float64) Region {
	minLat := math.Floor(lat)
	minLng := math.Floor(lng)
	return Region{
		Region: fmt.Sprintf("Grid %s %s", cellLabel(minLat, "N", "S"), cellLabel(minLng, "E", "W")),
		MinLat: minLat,
		MaxLat: minLat + 1,
		MinLng: minLng,
		MaxLng: minLng + 1,
	}
}

func cellLabel(v float64, pos, neg string) string {
	if v < 0 {
		return fmt.Sprintf("%d%s", int(-v), neg)
	}
	return fmt.Sprintf("%d%s", int(v), pos)
}
