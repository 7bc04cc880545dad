package deals

import (
	"slices"
	"strconv"
	"strings"

	"github.com/niksmo/dealspot/internal/core/domain"
)

// Dedupe drops products whose id was already seen, keeping the first
// occurrence and the order.
func Dedupe(ps []domain.Product) []domain.Product {
	seen := make(map[string]struct{}, len(ps))
	out := make([]domain.Product, 0, len(ps))
	for _, p := range ps {
		if _, ok := seen[p.ProductID]; ok {
			continue
		}
		seen[p.ProductID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// ProductRows pairs products for a 2-column grid.
// A row id joins the member ids with "-" and falls back to "row-N".
func ProductRows(ps []domain.Product) []domain.ProductRow {
	rows := make([]domain.ProductRow, 0, (len(ps)+1)/2)
	for i := 0; i < len(ps); i += 2 {
		group := slices.Clone(ps[i:min(i+2, len(ps))])

		ids := make([]string, 0, len(group))
		for _, p := range group {
			if p.ProductID != "" {
				ids = append(ids, p.ProductID)
			}
		}

		id := strings.Join(ids, "-")
		if id == "" {
			id = "row-" + strconv.Itoa(i/2)
		}
		rows = append(rows, domain.ProductRow{RowID: id, Products: group})
	}
	return rows
}
