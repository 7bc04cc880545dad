package domain

import "fmt"

// A SpotType names one of the personalized product feeds.
type SpotType string

const (
	Trending    SpotType = "trending"
	Recommended SpotType = "recommended"
	Recent      SpotType = "recent"
	Saved       SpotType = "saved"
)

var SpotOrder = []SpotType{Trending, Recommended, Recent, Saved}

type SpotConfig struct {
	Title       string
	Subtitle    string
	Description string
	Icon        string
	Path        string
}

var spotConfig = map[SpotType]SpotConfig{
	Trending: {
		Title:       "Trending Spot",
		Subtitle:    "Discover what's popular across Shop.",
		Description: "Products everyone is talking about",
		Icon:        "flame",
		Path:        "/trending",
	},
	Recommended: {
		Title:       "Recommended Spot",
		Subtitle:    "Picked for you.",
		Description: "Top rated products you might like",
		Icon:        "sparkles",
		Path:        "/recommended",
	},
	Recent: {
		Title:       "Recent Spot",
		Subtitle:    "Fresh arrivals.",
		Description: "The latest products in the pool",
		Icon:        "clock",
		Path:        "/recent",
	},
	Saved: {
		Title:       "Saved Spot",
		Subtitle:    "Your saved products.",
		Description: "Everything you bookmarked",
		Icon:        "heart",
		Path:        "/saved",
	},
}

func ParseSpotType(s string) (SpotType, error) {
	t := SpotType(s)
	if _, ok := spotConfig[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSpot, s)
	}
	return t, nil
}

func (t SpotType) Config() SpotConfig {
	return spotConfig[t]
}

// PerUser reports whether the spot content depends on the user.
func (t SpotType) PerUser() bool {
	return t == Saved
}

// A FetchPolicy tells a feed whether it may reuse already loaded products.
type FetchPolicy string

const (
	CacheFirst  FetchPolicy = "cache-first"
	NetworkOnly FetchPolicy = "network-only"
)

// ParseFetchPolicy falls back to def for unknown values.
func ParseFetchPolicy(s string, def FetchPolicy) FetchPolicy {
	switch FetchPolicy(s) {
	case CacheFirst, NetworkOnly:
		return FetchPolicy(s)
	}
	return def
}
