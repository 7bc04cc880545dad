package deals_test

import (
	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/shopspring/decimal"
)

type productOpt func(*domain.Product)

func newProduct(id, price string, opts ...productOpt) domain.Product {
	p := domain.Product{
		ProductID: id,
		Title:     "product " + id,
		Price:     domain.Money{Amount: price, CurrencyCode: "USD"},
	}
	for _, o := range opts {
		o(&p)
	}
	return p
}

func compareAt(amount string) productOpt {
	return func(p *domain.Product) {
		p.CompareAtPrice = &domain.Money{Amount: amount, CurrencyCode: "USD"}
	}
}

func shop(id, name string) productOpt {
	return func(p *domain.Product) {
		p.Shop = &domain.Shop{ID: id, Name: name}
	}
}

func reviews(rating float64, count int) productOpt {
	return func(p *domain.Product) {
		p.ReviewAnalytics = &domain.ReviewAnalytics{
			AverageRating: rating,
			ReviewCount:   count,
		}
	}
}

func ids(ps []domain.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ProductID
	}
	return out
}

var hundred = decimal.NewFromInt(100)
