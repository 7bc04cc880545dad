package domain

import (
	"fmt"
	"net/url"
)

// A SectionType names one of the curated deal views.
type SectionType string

const (
	TopDeals   SectionType = "topDeals"
	MegaDeals  SectionType = "megaDeals"
	Popular    SectionType = "popular"
	StoreDeals SectionType = "storeDeals"
)

const DefaultSectionType = TopDeals

// SectionOrder is the order sections appear on the home screen.
var SectionOrder = []SectionType{TopDeals, MegaDeals, Popular, StoreDeals}

type SectionMeta struct {
	Title     string
	Subtitle  string
	ListTitle string
	Icon      string
	Route     string
}

var sectionMeta = map[SectionType]SectionMeta{
	TopDeals: {
		Title:     "Top Deals",
		Subtitle:  "Hand-picked price drops you can't miss",
		ListTitle: "All Top Deals",
		Icon:      "trending-up",
		Route:     "/top-deals",
	},
	MegaDeals: {
		Title:     "Mega Deals",
		Subtitle:  "50% off and beyond",
		ListTitle: "All Mega Deals",
		Icon:      "zap",
		Route:     "/mega-deals",
	},
	Popular: {
		Title:     "Popular Picks",
		Subtitle:  "Loved by thousands of shoppers",
		ListTitle: "All Popular Picks",
		Icon:      "star",
		Route:     "/popular",
	},
	StoreDeals: {
		Title:     "Store-wise Deals",
		Subtitle:  "Store spotlight",
		ListTitle: "Store-wise Deals",
		Icon:      "store",
		Route:     "/store-deals",
	},
}

// ParseSectionType returns [DefaultSectionType] for an empty string.
func ParseSectionType(s string) (SectionType, error) {
	if s == "" {
		return DefaultSectionType, nil
	}
	t := SectionType(s)
	if _, ok := sectionMeta[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, s)
	}
	return t, nil
}

func (t SectionType) Meta() SectionMeta {
	return sectionMeta[t]
}

// StoreRoute returns the store deals route scoped to a store.
func StoreRoute(storeID string) string {
	return sectionMeta[StoreDeals].Route + "?storeId=" + url.QueryEscape(storeID)
}

type QuickAction struct {
	Key     string
	Label   string
	Copy    string
	Icon    string
	Section SectionType
}

var QuickActions = []QuickAction{
	{"quick-top-deals", "Top Deals", "Up to 60% off", "trending-up", TopDeals},
	{"quick-mega-deals", "Mega Drops", "50%+ savings", "flame", MegaDeals},
	{"quick-popular", "Popular Picks", "Loved by shoppers", "star", Popular},
	{"quick-store", "Store Picks", "Store spotlight", "store", StoreDeals},
}
