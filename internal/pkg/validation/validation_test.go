package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidLatitude(t *testing.T) {
	assert.True(t, IsValidLatitude(0))
	assert.True(t, IsValidLatitude(90))
	assert.True(t, IsValidLatitude(-90))
	assert.False(t, IsValidLatitude(90.0001))
	assert.False(t, IsValidLatitude(-91))
}

func TestIsValidLongitude(t *testing.T) {
	assert.True(t, IsValidLongitude(180))
	assert.True(t, IsValidLongitude(-180))
	assert.False(t, IsValidLongitude(180.5))
	assert.False(t, IsValidLongitude(-181))
}

func TestIsValidQuantity(t *testing.T) {
	assert.True(t, IsValidQuantity(1))
	assert.False(t, IsValidQuantity(0))
	assert.False(t, IsValidQuantity(-10))
}

func TestIsValidPriceRange(t *testing.T) {
	assert.True(t, IsValidPriceRange(10, 15))
	assert.True(t, IsValidPriceRange(10, 10))
	assert.False(t, IsValidPriceRange(0, 10))
	assert.False(t, IsValidPriceRange(-5, 10))
	assert.False(t, IsValidPriceRange(15, 10))
}

func TestIsValidCurrency(t *testing.T) {
	assert.True(t, IsValidCurrency("KES"))
	assert.True(t, IsValidCurrency("USD"))
	assert.False(t, IsValidCurrency("kes"))
	assert.False(t, IsValidCurrency("KSh"))
	assert.False(t, IsValidCurrency("KESH"))
	assert.False(t, IsValidCurrency("K1S"))
}
