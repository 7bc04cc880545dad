package domain

// LoadState is the request lifecycle of a product feed.
type LoadState struct {
	InitialLoading      bool
	FetchingMore        bool
	FetchingMoreVisible bool
}

// Idle reports whether no load is in flight.
func (s LoadState) Idle() bool {
	return !s.InitialLoading && !s.FetchingMore
}

// A Section is a derived, bounded view over the product pool.
type Section struct {
	Type     SectionType
	Title    string
	Subtitle string
	Route    string
	Store    *StoreGroup
	Products []Product
}

type HomeQuickAction struct {
	QuickAction
	Route string
}

type Home struct {
	QuickActions []HomeQuickAction
	Sections     []Section
	Load         LoadState
}

type SectionList struct {
	Section
	Rows []ProductRow
	Load LoadState
}

type SpotRequest struct {
	Spot     SpotType
	Username string
	Policy   FetchPolicy
}

type SpotFeed struct {
	Spot     SpotType
	Config   SpotConfig
	Products []Product
	Rows     []ProductRow
	Load     LoadState
	HasMore  bool
}

// A FilterRequest filters the pool of a spot, optionally narrowed to a
// section first.
type FilterRequest struct {
	Spot     SpotType
	Username string
	Section  SectionType
	Store    string
	Filters  ProductFilters
}

type FilterResult struct {
	Products         []Product
	Rows             []ProductRow
	AvailableShops   []string
	PriceRange       *PriceRange
	HasActiveFilters bool
	Load             LoadState
}
