package geo

import (
	"math"
	"math/rand"
	"testing"

	"farmgate-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wideRegion is big enough that clamping never interferes with the radius
// checks below.
var wideRegion = Region{
	Country: "Kenya",
	Region:  "Rift Valley",
	MinLat:  -5, MaxLat: 5,
	MinLng: 30, MaxLng: 42,
}

func testFuzzer(seed int64) *Fuzzer {
	return NewFuzzer(DefaultConfig(), NewTableResolver(wideRegion), rand.New(rand.NewSource(seed)))
}

func distanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * metersPerDegree
	dLng := (lng2 - lng1) * metersPerDegree * math.Cos(lat1*math.Pi/180)
	return math.Sqrt(dLat*dLat + dLng*dLng)
}

func TestFuzz_WithinRadiusBand(t *testing.T) {
	levels := map[domain.FuzzingLevel]float64{
		domain.FuzzLow:    500,
		domain.FuzzMedium: 2000,
		domain.FuzzHigh:   5000,
	}
	for level, radius := range levels {
		f := testFuzzer(42)
		for i := 0; i < 100; i++ {
			loc, err := f.Fuzz(0.5, 36.0, level)
			require.NoError(t, err)
			d := distanceMeters(0.5, 36.0, loc.PublicLat, loc.PublicLng)
			assert.LessOrEqual(t, d, radius*1.01, "level %s exceeded its band", level)
			assert.GreaterOrEqual(t, d, radius/2*0.99, "level %s leaked a near-precise point", level)
		}
	}
}

func TestFuzz_DeterministicForFixedSeed(t *testing.T) {
	a, err := testFuzzer(7).Fuzz(0.5, 36.0, domain.FuzzMedium)
	require.NoError(t, err)
	b, err := testFuzzer(7).Fuzz(0.5, 36.0, domain.FuzzMedium)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFuzz_RegionNamingFromPrecisePoint(t *testing.T) {
	f := testFuzzer(3)
	loc, err := f.Fuzz(0.5, 36.0, domain.FuzzHigh)
	require.NoError(t, err)
	assert.Equal(t, "Kenya", loc.Country)
	assert.Equal(t, "Rift Valley", loc.Region)
	assert.Equal(t, "Rift Valley, Kenya", loc.FormattedAddress)
}

func TestFuzz_ClampsToRegionBounds(t *testing.T) {
	// A region barely larger than the point: every fuzzed output must stay
	// inside its box.
	tight := Region{
		Country: "Kenya", Region: "Nakuru Town",
		MinLat: 0.49, MaxLat: 0.51,
		MinLng: 35.99, MaxLng: 36.01,
	}
	f := NewFuzzer(DefaultConfig(), NewTableResolver(tight), rand.New(rand.NewSource(9)))
	for i := 0; i < 50; i++ {
		loc, err := f.Fuzz(0.5, 36.0, domain.FuzzHigh)
		require.NoError(t, err)
		assert.True(t, tight.Contains(loc.PublicLat, loc.PublicLng))
	}
}

func TestFuzz_GridFallback(t *testing.T) {
	// No table entry contains the point: the grid cell names and bounds it.
	f := NewFuzzer(DefaultConfig(), NewTableResolver(), rand.New(rand.NewSource(1)))
	loc, err := f.Fuzz(-1.3, 36.8, domain.FuzzLow)
	require.NoError(t, err)
	assert.Equal(t, "Grid 2S 36E", loc.Region)
	assert.GreaterOrEqual(t, loc.PublicLat, -2.0)
	assert.Less(t, loc.PublicLat, -0.99)
}

func TestFuzz_InvalidInputs(t *testing.T) {
	f := testFuzzer(1)

	_, err := f.Fuzz(91, 0, domain.FuzzLow)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
	_, err = f.Fuzz(-91, 0, domain.FuzzLow)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
	_, err = f.Fuzz(0, 181, domain.FuzzLow)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
	_, err = f.Fuzz(0, -181, domain.FuzzLow)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = f.Fuzz(0, 0, domain.FuzzingLevel("extreme"))
	assert.ErrorIs(t, err, ErrInvalidPrivacyLevel)
}

func TestFuzz_BoundaryCoordinatesAccepted(t *testing.T) {
	f := testFuzzer(1)
	_, err := f.Fuzz(90, 180, domain.FuzzLow)
	assert.NoError(t, err)
	_, err = f.Fuzz(-90, -180, domain.FuzzLow)
	assert.NoError(t, err)
}
