package domain

type (
	// A Product is a read-only record of the product pool.
	Product struct {
		ProductID       string
		Title           string
		Price           Money
		CompareAtPrice  *Money
		Shop            *Shop
		ReviewAnalytics *ReviewAnalytics
		ImageURL        string
	}

	// A Money amount is kept as the decimal string it was received as.
	Money struct {
		Amount       string
		CurrencyCode string
	}

	Shop struct {
		ID   string
		Name string
	}

	ReviewAnalytics struct {
		AverageRating float64
		ReviewCount   int
	}
)

// UnknownShopName is used for products without a shop reference.
const UnknownShopName = "Unknown Shop"

func (p Product) ShopName() string {
	if p.Shop == nil || p.Shop.Name == "" {
		return UnknownShopName
	}
	return p.Shop.Name
}

func (p Product) Rating() float64 {
	if p.ReviewAnalytics == nil {
		return 0
	}
	return p.ReviewAnalytics.AverageRating
}

func (p Product) ReviewCount() int {
	if p.ReviewAnalytics == nil {
		return 0
	}
	return p.ReviewAnalytics.ReviewCount
}

// A ProductRow pairs up to two products for a 2-column grid.
type ProductRow struct {
	RowID    string
	Products []Product
}

// StoreGroup holds the discounted products of one shop.
type StoreGroup struct {
	ShopID   string
	ShopName string
	Deals    []Product
}

// A SaveEvent adds or removes a product from a user's saved spot.
type SaveEvent struct {
	Username  string
	ProductID string
	Saved     bool
}
