package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// LocalityBindings maps a region name to the locality whose weather represents it.
// A region missing from the table is unsupported.
type LocalityBindings map[string]string

// Resolve returns the locality bound to a region. Lookup is exact on the
// trimmed name.
func (b LocalityBindings) Resolve(region string) (string, bool) {
	loc, ok := b[strings.TrimSpace(region)]
	if !ok || strings.TrimSpace(loc) == "" {
		return "", false
	}
	return loc, true
}

// Regions lists the bound region names in sorted order.
func (b LocalityBindings) Regions() []string {
	return slices.Sorted(maps.Keys(b))
}

// UnsupportedNotice is the message shown when a region has no binding.
func UnsupportedNotice(region string) string {
	return fmt.Sprintf("No data available for %s", region)
}

// DefaultLocalityBindings returns the built-in US state table. Each state maps to
// its capital or largest city. District of Columbia and Puerto Rico are left
// unbound.
func DefaultLocalityBindings() LocalityBindings {
	return LocalityBindings{
		"Alabama":        "Montgomery",
		"Alaska":         "Anchorage",
		"Arizona":        "Phoenix",
		"Arkansas":       "Little Rock",
		"California":     "Los Angeles",
		"Colorado":       "Denver",
		"Connecticut":    "Hartford",
		"Delaware":       "Dover",
		"Florida":        "Miami",
		"Georgia":        "Atlanta",
		"Hawaii":         "Honolulu",
		"Idaho":          "Boise",
		"Illinois":       "Chicago",
		"Indiana":        "Indianapolis",
		"Iowa":           "Des Moines",
		"Kansas":         "Wichita",
		"Kentucky":       "Louisville",
		"Louisiana":      "New Orleans",
		"Maine":          "Portland",
		"Maryland":       "Baltimore",
		"Massachusetts":  "Boston",
		"Michigan":       "Detroit",
		"Minnesota":      "Minneapolis",
		"Mississippi":    "Jackson",
		"Missouri":       "Kansas City",
		"Montana":        "Helena",
		"Nebraska":       "Omaha",
		"Nevada":         "Las Vegas",
		"New Hampshire":  "Concord",
		"New Jersey":     "Newark",
		"New Mexico":     "Albuquerque",
		"New York":       "New York",
		"North Carolina": "Charlotte",
		"North Dakota":   "Bismarck",
		"Ohio":           "Columbus",
		"Oklahoma":       "Oklahoma City",
		"Oregon":         "Portland",
		"Pennsylvania":   "Philadelphia",
		"Rhode Island":   "Providence",
		"South Carolina": "Columbia",
		"South Dakota":   "Sioux Falls",
		"Tennessee":      "Nashville",
		"Texas":          "Houston",
		"Utah":           "Salt Lake City",
		"Vermont":        "Burlington",
		"Virginia":       "Richmond",
		"Washington":     "Seattle",
		"West Virginia":  "Charleston",
		"Wisconsin":      "Milwaukee",
		"Wyoming":        "Cheyenne",
	}
}
