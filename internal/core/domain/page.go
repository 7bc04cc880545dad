package domain

// A ProductOrder is the storage ordering behind a spot.
type ProductOrder int

const (
	OrderByReviewCount ProductOrder = iota
	OrderByRating
	OrderByRecent
)

type PageRequest struct {
	Spot     SpotType
	Username string
	First    int
	Offset   int
}

// A Page is one slice of a spot. Next is the offset of the following page
// in the source the spot reads; it can run ahead of len(Products) when
// source rows have no product behind them.
type Page struct {
	Products []Product
	HasMore  bool
	Next     int
}
