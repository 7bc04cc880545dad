package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/dealspot/internal/core/domain"
	"github.com/niksmo/dealspot/internal/core/port"
)

type SpotsHandler struct {
	spots port.SpotsProvider
	saved port.SavedSetter
}

// RegisterSpots registers the feed endpoints. The saved spot and the
// saved endpoints read the user from the X-Username header.
func RegisterSpots(
	mux *http.ServeMux, spots port.SpotsProvider, saved port.SavedSetter,
) {
	h := SpotsHandler{spots, saved}
	mux.HandleFunc("GET /v1/spots/{spot}", h.GetSpot)
	mux.HandleFunc("POST /v1/spots/{spot}/more", h.PostMore)
	mux.HandleFunc("PUT /v1/saved/{productID}", h.PutSaved)
	mux.HandleFunc("DELETE /v1/saved/{productID}", h.DeleteSaved)
}

func (h SpotsHandler) spotRequest(r *http.Request) (domain.SpotRequest, error) {
	spot, err := domain.ParseSpotType(r.PathValue("spot"))
	if err != nil {
		return domain.SpotRequest{}, err
	}
	return domain.SpotRequest{
		Spot:     spot,
		Username: username(r),
		Policy:   domain.ParseFetchPolicy(r.URL.Query().Get("fetch_policy"), ""),
	}, nil
}

func (h SpotsHandler) GetSpot(w http.ResponseWriter, r *http.Request) {
	const op = "SpotsHandler.GetSpot"
	log := slog.With("op", op)

	req, err := h.spotRequest(r)
	if err != nil {
		writeError(w, log, err)
		return
	}

	feed, err := h.spots.Spot(r.Context(), req)
	if err != nil {
		writeError(w, log, err)
		return
	}

	c := feed.Config
	res := SpotResponse{
		Spot: string(feed.Spot),
		Config: SpotConfig{
			Title:       c.Title,
			Subtitle:    c.Subtitle,
			Description: c.Description,
			Icon:        c.Icon,
			Path:        c.Path,
		},
		Products: productsFromDomain(feed.Products),
		Rows:     rowsFromDomain(feed.Rows),
		Load:     loadFromDomain(feed.Load),
		HasMore:  feed.HasMore,
	}
	if len(feed.Products) == 0 && feed.Load.Idle() {
		res.Message = msgCheckBack
	}

	writeJSON(w, http.StatusOK, res)
}

func (h SpotsHandler) PostMore(w http.ResponseWriter, r *http.Request) {
	const op = "SpotsHandler.PostMore"
	log := slog.With("op", op)

	req, err := h.spotRequest(r)
	if err != nil {
		writeError(w, log, err)
		return
	}

	started, err := h.spots.FetchMore(r.Context(), req)
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusAccepted, FetchMoreResponse{Started: started})
}

func (h SpotsHandler) PutSaved(w http.ResponseWriter, r *http.Request) {
	h.setSaved(w, r, true)
}

func (h SpotsHandler) DeleteSaved(w http.ResponseWriter, r *http.Request) {
	h.setSaved(w, r, false)
}

func (h SpotsHandler) setSaved(w http.ResponseWriter, r *http.Request, saved bool) {
	const op = "SpotsHandler.setSaved"
	log := slog.With("op", op)

	evt := domain.SaveEvent{
		Username:  username(r),
		ProductID: r.PathValue("productID"),
		Saved:     saved,
	}

	if err := h.saved.SetSaved(r.Context(), evt); err != nil {
		writeError(w, log, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	log.Info("save event accepted", "productID", evt.ProductID, "saved", saved)
}
