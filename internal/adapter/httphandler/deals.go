package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/niksmo/dealspot/internal/core/port"
)

type DealsHandler struct {
	deals port.DealsProvider
}

func RegisterDeals(mux *http.ServeMux, deals port.DealsProvider) {
	h := DealsHandler{deals}
	mux.HandleFunc("GET /v1/home", h.GetHome)
	mux.HandleFunc("GET /v1/sections/{section}", h.GetSection)
	mux.Handle(
		"POST /v1/products/filter", AllowJSON(http.HandlerFunc(h.PostFilter)),
	)
}

func (h DealsHandler) GetHome(w http.ResponseWriter, r *http.Request) {
	const op = "DealsHandler.GetHome"
	log := slog.With("op", op)

	home, err := h.deals.Home(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}

	res := HomeResponse{
		QuickActions: make([]QuickAction, 0, len(home.QuickActions)),
		Sections:     make([]Section, 0, len(home.Sections)),
		Load:         loadFromDomain(home.Load),
	}
	for _, qa := range home.QuickActions {
		res.QuickActions = append(res.QuickActions, QuickAction{
			Key:     qa.Key,
			Label:   qa.Label,
			Copy:    qa.Copy,
			Icon:    qa.Icon,
			Section: string(qa.Section),
			Route:   qa.Route,
		})
	}
	for _, s := range home.Sections {
		res.Sections = append(res.Sections, sectionFromDomain(s))
	}

	writeJSON(w, http.StatusOK, res)
}

// GetSection serves the full list of a section.
// The optional store query selects the store of the store deals section.
func (h DealsHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	const op = "DealsHandler.GetSection"
	log := slog.With("op", op)

	t, err := domain.ParseSectionType(r.PathValue("section"))
	if err != nil {
		writeError(w, log, err)
		return
	}

	list, err := h.deals.SectionList(r.Context(), t, r.URL.Query().Get("store"))
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, SectionListResponse{
		Section: sectionFromDomain(list.Section),
		Rows:    rowsFromDomain(list.Rows),
		Load:    loadFromDomain(list.Load),
	})
}

func (h DealsHandler) PostFilter(w http.ResponseWriter, r *http.Request) {
	const op = "DealsHandler.PostFilter"
	log := slog.With("op", op)

	var req FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, log, "invalid JSON data", err)
		return
	}

	dreq := domain.FilterRequest{
		Username: username(r),
		Store:    req.Store,
		Filters:  filtersToDomain(req.Filters),
	}

	if req.Spot != "" {
		spot, err := domain.ParseSpotType(req.Spot)
		if err != nil {
			writeError(w, log, err)
			return
		}
		dreq.Spot = spot
	}

	if req.Section != "" {
		section, err := domain.ParseSectionType(req.Section)
		if err != nil {
			writeError(w, log, err)
			return
		}
		dreq.Section = section
	}

	res, err := h.deals.FilterProducts(r.Context(), dreq)
	if err != nil {
		writeError(w, log, err)
		return
	}

	out := FilterResponse{
		Products:         productsFromDomain(res.Products),
		Rows:             rowsFromDomain(res.Rows),
		AvailableShops:   res.AvailableShops,
		HasActiveFilters: res.HasActiveFilters,
		Load:             loadFromDomain(res.Load),
	}
	if res.PriceRange != nil {
		out.PriceRange = &PriceRange{
			Min: res.PriceRange.Min,
			Max: res.PriceRange.Max,
		}
	}
	if len(res.Products) == 0 && res.Load.Idle() {
		out.Message = msgCheckBack
		if res.HasActiveFilters {
			out.Message = msgNoMatches
		}
	}

	writeJSON(w, http.StatusOK, out)
}
