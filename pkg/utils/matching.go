package utils

import (
	"math"
	"strings"

	"github.com/carryalong/carryalong-backend/internal/models"
)

// RouteMatches checks exact route equality for acceptance: the parcel's
// pickup and drop cities must equal the travel's from and to cities,
// case-insensitively.
func RouteMatches(pickupCity, dropCity, fromCity, toCity string) bool {
	return strings.EqualFold(strings.TrimSpace(pickupCity), strings.TrimSpace(fromCity)) &&
		strings.EqualFold(strings.TrimSpace(dropCity), strings.TrimSpace(toCity))
}

// CityContains is the looser rule used by search and match queries: a travel
// through "New Delhi" matches a parcel picked up in "Delhi".
func CityContains(city, query string) bool {
	return strings.Contains(strings.ToLower(city), strings.ToLower(query))
}

// SpaceFits reports whether a travel's available space can carry a parcel of
// the given size. Medium space takes either size; small space takes only
// small parcels.
func SpaceFits(availableSpace, parcelSize models.ParcelSize) bool {
	if availableSpace == models.ParcelSizeMedium {
		return true
	}
	return parcelSize == models.ParcelSizeSmall
}

// MatchableSizes lists the parcel sizes a travel matches when searching
// parcels for a route. Small parcels fit any space, so small is always
// included alongside the travel's own space class.
func MatchableSizes(availableSpace models.ParcelSize) []string {
	if availableSpace == models.ParcelSizeSmall {
		return []string{string(models.ParcelSizeSmall)}
	}
	return []string{string(availableSpace), string(models.ParcelSizeSmall)}
}

// MatchableSpaces lists the travel space classes that can carry a parcel of
// the given size, used when searching travels for a parcel.
func MatchableSpaces(parcelSize models.ParcelSize) []string {
	if parcelSize == models.ParcelSizeMedium {
		return []string{string(models.ParcelSizeMedium)}
	}
	return []string{string(models.ParcelSizeMedium), string(models.ParcelSizeSmall)}
}

// RoundRating rounds an average rating to one decimal place.
func RoundRating(average float64) float64 {
	return math.Round(average*10) / 10
}
