package httphandler

import (
	"github.com/niksmo/dealspot/internal/core/deals"
	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/shopspring/decimal"
)

type (
	Product struct {
		ProductID       string           `json:"product_id"`
		Title           string           `json:"title"`
		Price           Money            `json:"price"`
		CompareAtPrice  *Money           `json:"compare_at_price,omitempty"`
		Shop            *Shop            `json:"shop,omitempty"`
		ReviewAnalytics *ReviewAnalytics `json:"review_analytics,omitempty"`
		ImageURL        string           `json:"image_url,omitempty"`

		// Set on responses only, with two fraction digits.
		DiscountPercent string `json:"discount_percent,omitempty"`
	}

	Money struct {
		Amount       string `json:"amount"`
		CurrencyCode string `json:"currency_code"`
	}

	Shop struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	ReviewAnalytics struct {
		AverageRating float64 `json:"average_rating"`
		ReviewCount   int     `json:"review_count"`
	}
)

type (
	ProductRow struct {
		RowID    string    `json:"row_id"`
		Products []Product `json:"products"`
	}

	LoadState struct {
		InitialLoading      bool `json:"initial_loading"`
		FetchingMore        bool `json:"fetching_more"`
		FetchingMoreVisible bool `json:"fetching_more_visible"`
	}

	StoreDeals struct {
		ShopID   string    `json:"shop_id"`
		ShopName string    `json:"shop_name"`
		Deals    []Product `json:"deals"`
	}

	Section struct {
		Type     string      `json:"type"`
		Title    string      `json:"title"`
		Subtitle string      `json:"subtitle"`
		Route    string      `json:"route"`
		Icon     string      `json:"icon"`
		Store    *StoreDeals `json:"store,omitempty"`
		Products []Product   `json:"products"`
		Message  string      `json:"message,omitempty"`
	}

	QuickAction struct {
		Key     string `json:"key"`
		Label   string `json:"label"`
		Copy    string `json:"copy"`
		Icon    string `json:"icon"`
		Section string `json:"section"`
		Route   string `json:"route"`
	}

	HomeResponse struct {
		QuickActions []QuickAction `json:"quick_actions"`
		Sections     []Section     `json:"sections"`
		Load         LoadState     `json:"load"`
	}

	SectionListResponse struct {
		Section
		Rows []ProductRow `json:"rows"`
		Load LoadState    `json:"load"`
	}

	SpotConfig struct {
		Title       string `json:"title"`
		Subtitle    string `json:"subtitle"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
		Path        string `json:"path"`
	}

	SpotResponse struct {
		Spot     string       `json:"spot"`
		Config   SpotConfig   `json:"config"`
		Products []Product    `json:"products"`
		Rows     []ProductRow `json:"rows"`
		Load     LoadState    `json:"load"`
		HasMore  bool         `json:"has_more"`
		Message  string       `json:"message,omitempty"`
	}

	FetchMoreResponse struct {
		Started bool `json:"started"`
	}
)

type (
	// Filters are the criteria of a filter request. Absent fields are
	// not applied.
	Filters struct {
		Shops      []string         `json:"shops"`
		MinPrice   *decimal.Decimal `json:"min_price"`
		MaxPrice   *decimal.Decimal `json:"max_price"`
		MinRating  *float64         `json:"min_rating"`
		OnSaleOnly bool             `json:"on_sale_only"`
	}

	FilterRequest struct {
		Spot    string  `json:"spot"`
		Section string  `json:"section"`
		Store   string  `json:"store"`
		Filters Filters `json:"filters"`
	}

	PriceRange struct {
		Min decimal.Decimal `json:"min"`
		Max decimal.Decimal `json:"max"`
	}

	FilterResponse struct {
		Products         []Product    `json:"products"`
		Rows             []ProductRow `json:"rows"`
		AvailableShops   []string     `json:"available_shops"`
		PriceRange       *PriceRange  `json:"price_range,omitempty"`
		HasActiveFilters bool         `json:"has_active_filters"`
		Load             LoadState    `json:"load"`
		Message          string       `json:"message,omitempty"`
	}

	ErrorResponse struct {
		Error   string   `json:"error"`
		Actions []string `json:"actions,omitempty"`
	}
)

const (
	msgNoMatches  = "No products match your filters"
	msgCheckBack  = "Check back in a moment"
	actionRetry   = "try_again"
	actionGoHome  = "go_home"
	discountDigit = 2
)

func productToDomain(p Product) domain.Product {
	dp := domain.Product{
		ProductID: p.ProductID,
		Title:     p.Title,
		Price:     domain.Money(p.Price),
		ImageURL:  p.ImageURL,
	}
	if p.CompareAtPrice != nil {
		m := domain.Money(*p.CompareAtPrice)
		dp.CompareAtPrice = &m
	}
	if p.Shop != nil {
		dp.Shop = &domain.Shop{ID: p.Shop.ID, Name: p.Shop.Name}
	}
	if p.ReviewAnalytics != nil {
		ra := domain.ReviewAnalytics(*p.ReviewAnalytics)
		dp.ReviewAnalytics = &ra
	}
	return dp
}

func productFromDomain(dp domain.Product) Product {
	p := Product{
		ProductID: dp.ProductID,
		Title:     dp.Title,
		Price:     Money(dp.Price),
		ImageURL:  dp.ImageURL,
	}
	if dp.CompareAtPrice != nil {
		m := Money(*dp.CompareAtPrice)
		p.CompareAtPrice = &m
	}
	if dp.Shop != nil {
		p.Shop = &Shop{ID: dp.Shop.ID, Name: dp.Shop.Name}
	}
	if dp.ReviewAnalytics != nil {
		ra := ReviewAnalytics(*dp.ReviewAnalytics)
		p.ReviewAnalytics = &ra
	}
	if deals.IsDiscounted(dp) {
		p.DiscountPercent = deals.DiscountPercent(dp).StringFixed(discountDigit)
	}
	return p
}

func productsFromDomain(dps []domain.Product) []Product {
	ps := make([]Product, 0, len(dps))
	for _, dp := range dps {
		ps = append(ps, productFromDomain(dp))
	}
	return ps
}

func rowsFromDomain(drs []domain.ProductRow) []ProductRow {
	rs := make([]ProductRow, 0, len(drs))
	for _, dr := range drs {
		rs = append(rs, ProductRow{
			RowID:    dr.RowID,
			Products: productsFromDomain(dr.Products),
		})
	}
	return rs
}

func loadFromDomain(s domain.LoadState) LoadState {
	return LoadState(s)
}

func sectionFromDomain(ds domain.Section) Section {
	s := Section{
		Type:     string(ds.Type),
		Title:    ds.Title,
		Subtitle: ds.Subtitle,
		Route:    ds.Route,
		Icon:     ds.Type.Meta().Icon,
		Products: productsFromDomain(ds.Products),
	}
	if ds.Store != nil {
		s.Store = &StoreDeals{
			ShopID:   ds.Store.ShopID,
			ShopName: ds.Store.ShopName,
			Deals:    productsFromDomain(ds.Store.Deals),
		}
	}
	if len(ds.Products) == 0 {
		s.Message = msgCheckBack
	}
	return s
}

func filtersToDomain(f Filters) domain.ProductFilters {
	df := domain.ProductFilters{
		Shops:      f.Shops,
		MinRating:  f.MinRating,
		OnSaleOnly: f.OnSaleOnly,
	}
	if f.MinPrice != nil {
		df.MinPrice = decimal.NewNullDecimal(*f.MinPrice)
	}
	if f.MaxPrice != nil {
		df.MaxPrice = decimal.NewNullDecimal(*f.MaxPrice)
	}
	return df
}
