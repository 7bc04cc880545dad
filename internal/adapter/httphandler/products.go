package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/niksmo/dealspot/internal/core/port"
)

const maxIngestBody = 4 << 20

type ProductsHandler struct {
	pSender port.ProductsSender
}

// RegisterProducts registers the ingest endpoint.
//
// POST /v1/products JSON array of products (202 Accepted, 400 Bad request).
func RegisterProducts(mux *http.ServeMux, pSender port.ProductsSender) {
	h := ProductsHandler{pSender}
	mux.Handle("POST /v1/products", AllowJSON(http.HandlerFunc(h.PostProducts)))
}

func (h ProductsHandler) PostProducts(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.PostProducts"
	log := slog.With("op", op)

	r.Body = http.MaxBytesReader(w, r.Body, maxIngestBody)

	var ps []Product
	if err := json.NewDecoder(r.Body).Decode(&ps); err != nil {
		writeBadRequest(w, log, "invalid JSON data", err)
		return
	}

	dps, err := h.toDomain(ps)
	if err != nil {
		writeBadRequest(w, log, err.Error(), err)
		return
	}

	if err := h.pSender.SendProducts(r.Context(), dps); err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]int{"accepted": len(dps)})
	log.Info("accepted", "nProducts", len(dps))
}

func (ProductsHandler) toDomain(ps []Product) ([]domain.Product, error) {
	dps := make([]domain.Product, 0, len(ps))
	for _, p := range ps {
		if p.ProductID == "" {
			return nil, domain.ErrNoProductID
		}
		dps = append(dps, productToDomain(p))
	}
	return dps, nil
}
