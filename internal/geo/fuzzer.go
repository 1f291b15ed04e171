package geo

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"farmgate-backend/internal/domain"
	"farmgate-backend/internal/pkg/validation"
)

var (
	// ErrInvalidCoordinates is returned for latitudes outside [-90, 90] or
	// longitudes outside [-180, 180].
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	// ErrInvalidPrivacyLevel is returned for a fuzzing level not in the config.
	ErrInvalidPrivacyLevel = errors.New("unknown privacy level")
)

// metersPerDegree is the approximate length of one degree of latitude.
const metersPerDegree = 111320.0

// Config maps each privacy level to its perturbation radius in meters.
type Config struct {
	RadiusMeters map[domain.FuzzingLevel]float64
}

// DefaultConfig returns the stock radius bands. They are policy constants,
// overridable through configuration.
func DefaultConfig() Config {
	return Config{RadiusMeters: map[domain.FuzzingLevel]float64{
		domain.FuzzLow:    500,
		domain.FuzzMedium: 2000,
		domain.FuzzHigh:   5000,
	}}
}

// PublicLocation is the privacy-safe location derived from precise
// coordinates. Only this ever leaves the server.
type PublicLocation struct {
	PublicLat        float64
	PublicLng        float64
	Country          string
	Region           string
	Locality         string
	FormattedAddress string
}

// Fuzzer perturbs precise coordinates into a public location. It is pure:
// the randomness source is injected so tests can fix the seed.
type Fuzzer struct {
	cfg      Config
	resolver RegionResolver
	rnd      *rand.Rand
}

// NewFuzzer builds a Fuzzer. A nil resolver falls back to the grid-cell
// table resolver; a nil rnd gets a time-seeded source.
func NewFuzzer(cfg Config, resolver RegionResolver, rnd *rand.Rand) *Fuzzer {
	if resolver == nil {
		resolver = NewTableResolver()
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.RadiusMeters == nil {
		cfg = DefaultConfig()
	}
	return &Fuzzer{cfg: cfg, resolver: resolver, rnd: rnd}
}

// Fuzz maps precise coordinates and a privacy level to a public location.
// The offset distance stays within the level's radius band and the public
// point is clamped to the precise point's region box, so the region naming
// is always truthful and the precise point is not recoverable beyond the
// band.
func (f *Fuzzer) Fuzz(lat, lng float64, level domain.FuzzingLevel) (PublicLocation, error) {
	if !validation.IsValidLatitude(lat) || !validation.IsValidLongitude(lng) {
		return PublicLocation{}, ErrInvalidCoordinates
	}
	radius, ok := f.cfg.RadiusMeters[level]
	if !ok {
		return PublicLocation{}, ErrInvalidPrivacyLevel
	}

	region := f.resolver.Resolve(lat, lng)

	// Distance in [radius/2, radius] keeps the offset meaningful; a near-zero
	// draw would leak the precise point at any level.
	dist := radius/2 + f.rnd.Float64()*(radius/2)
	bearing := f.rnd.Float64() * 2 * math.Pi

	dLat := dist * math.Cos(bearing) / metersPerDegree
	lngScale := metersPerDegree * math.Cos(lat*math.Pi/180)
	dLng := 0.0
	if lngScale > 1 {
		dLng = dist * math.Sin(bearing) / lngScale
	}

	pubLat := lat + dLat
	pubLng := lng + dLng
	if region.MinLat < region.MaxLat && region.MinLng < region.MaxLng {
		pubLat = clamp(pubLat, region.MinLat, region.MaxLat)
		pubLng = clamp(pubLng, region.MinLng, region.MaxLng)
	}
	pubLat = clamp(pubLat, -90, 90)
	pubLng = clamp(pubLng, -180, 180)

	return PublicLocation{
		PublicLat:        pubLat,
		PublicLng:        pubLng,
		Country:          region.Country,
		Region:           region.Region,
		Locality:         region.Locality,
		FormattedAddress: region.FormattedAddress(),
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		return v
	}
	return math.Min(math.Max(v, lo), hi)
}
