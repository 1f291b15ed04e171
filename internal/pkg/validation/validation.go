package validation

// IsValidLatitude reports whether lat is inside [-90, 90].
func IsValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

// IsValidLongitude reports whether lng is inside [-180, 180].
func IsValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}

func IsValidQuantity(q int) bool {
	return q > 0
}

// IsValidPriceRange requires both prices positive with min <= max.
func IsValidPriceRange(min, max float64) bool {
	return min > 0 && max >= min
}

// IsValidCurrency accepts ISO-style 3-letter uppercase codes.
func IsValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
