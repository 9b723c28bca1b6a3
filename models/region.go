package models

import (
	"strings"

	"github.com/golang/geo/s2"
)

// Region is one of Ghana's administrative regions
type Region string

// Ghana's sixteen regions
const (
	RegionAhafo        Region = "Ahafo"
	RegionAshanti      Region = "Ashanti"
	RegionBono         Region = "Bono"
	RegionBonoEast     Region = "Bono East"
	RegionCentral      Region = "Central"
	RegionEastern      Region = "Eastern"
	RegionGreaterAccra Region = "Greater Accra"
	RegionNorthEast    Region = "North East"
	RegionNorthern     Region = "Northern"
	RegionOti          Region = "Oti"
	RegionSavannah     Region = "Savannah"
	RegionUpperEast    Region = "Upper East"
	RegionUpperWest    Region = "Upper West"
	RegionVolta        Region = "Volta"
	RegionWestern      Region = "Western"
	RegionWesternNorth Region = "Western North"
)

// regionCapitals holds each region's capital, used as the default case location
var regionCapitals = map[Region]Location{
	RegionAhafo:        {Latitude: 6.8000, Longitude: -2.5200, Address: "Goaso, Ahafo"},
	RegionAshanti:      {Latitude: 6.6885, Longitude: -1.6244, Address: "Kumasi, Ashanti"},
	RegionBono:         {Latitude: 7.3399, Longitude: -2.3268, Address: "Sunyani, Bono"},
	RegionBonoEast:     {Latitude: 7.5860, Longitude: -1.9381, Address: "Techiman, Bono East"},
	RegionCentral:      {Latitude: 5.1053, Longitude: -1.2466, Address: "Cape Coast, Central"},
	RegionEastern:      {Latitude: 6.0941, Longitude: -0.2591, Address: "Koforidua, Eastern"},
	RegionGreaterAccra: {Latitude: 5.6037, Longitude: -0.1870, Address: "Accra, Greater Accra"},
	RegionNorthEast:    {Latitude: 10.5286, Longitude: -0.3698, Address: "Nalerigu, North East"},
	RegionNorthern:     {Latitude: 9.4008, Longitude: -0.8393, Address: "Tamale, Northern"},
	RegionOti:          {Latitude: 8.0667, Longitude: 0.1833, Address: "Dambai, Oti"},
	RegionSavannah:     {Latitude: 9.0833, Longitude: -1.8167, Address: "Damongo, Savannah"},
	RegionUpperEast:    {Latitude: 10.7856, Longitude: -0.8514, Address: "Bolgatanga, Upper East"},
	RegionUpperWest:    {Latitude: 10.0601, Longitude: -2.5099, Address: "Wa, Upper West"},
	RegionVolta:        {Latitude: 6.6008, Longitude: 0.4713, Address: "Ho, Volta"},
	RegionWestern:      {Latitude: 4.9340, Longitude: -1.7137, Address: "Sekondi-Takoradi, Western"},
	RegionWesternNorth: {Latitude: 6.2058, Longitude: -2.4894, Address: "Sefwi Wiawso, Western North"},
}

// Regions returns every region in a stable order
func Regions() []Region {
	return []Region{
		RegionAhafo, RegionAshanti, RegionBono, RegionBonoEast, RegionCentral, RegionEastern,
		RegionGreaterAccra, RegionNorthEast, RegionNorthern, RegionOti, RegionSavannah,
		RegionUpperEast, RegionUpperWest, RegionVolta, RegionWestern, RegionWesternNorth,
	}
}

// ParseRegion matches a region name ignoring case and surrounding space
func ParseRegion(s string) (Region, bool) {
	s = strings.TrimSpace(s)
	for _, r := range Regions() {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

// DefaultLocation is the fallback location for a case without coordinates
func (r Region) DefaultLocation() *Location {
	loc, ok := regionCapitals[r]
	if !ok {
		return nil
	}
	return &loc
}

// Ghana's bounding box with a small margin
const (
	minLat, maxLat = 4.5, 11.2
	minLng, maxLng = -3.3, 1.3
)

// NearestRegion returns the region whose capital is closest to the given point. Points
// outside Ghana's bounding box match nothing.
func NearestRegion(lat, lng float64) (Region, bool) {
	if lat < minLat || lat > maxLat || lng < minLng || lng > maxLng {
		return "", false
	}
	p := s2.LatLngFromDegrees(lat, lng)
	var best Region
	bestDist := -1.0
	for _, r := range Regions() {
		c := regionCapitals[r]
		d := p.Distance(s2.LatLngFromDegrees(c.Latitude, c.Longitude)).Radians()
		if bestDist < 0 || d < bestDist {
			best, bestDist = r, d
		}
	}
	return best, true
}
