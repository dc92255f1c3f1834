package products

import (
	"math"
	"net/http"
	"strconv"

	"storefront/models"
	"storefront/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
)

// Handler serves the catalog over HTTP.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

type listResponse struct {
	Total    int              `json:"total"`
	Count    int              `json:"count"`
	Products []models.Product `json:"products"`
}

// ListProducts handles GET /api/products. Repeated category and brand parameters toggle
// the corresponding sets.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	filters, err := filtersFromQuery(q)
	if err != nil {
		utils.RespondWithMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	found := h.store.Search(filters, ParseSortMode(q.Get("sort")), q.Get("q"))
	utils.RespondWithJSON(w, http.StatusOK, listResponse{
		Total:    h.store.Len(),
		Count:    len(found),
		Products: found,
	})
}

func filtersFromQuery(q map[string][]string) (FilterState, error) {
	f := DefaultFilters()
	for _, c := range q["category"] {
		f = f.ToggleCategory(c)
	}
	for _, b := range q["brand"] {
		f = f.ToggleBrand(b)
	}

	if v := first(q, "rating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(rating) || math.IsInf(rating, 0) {
			return f, errBadParam("rating")
		}
		f = f.WithRating(rating)
	}

	lo, hi := f.PriceRange.Min, f.PriceRange.Max
	if v := first(q, "min"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, errBadParam("min")
		}
		lo = d
	}
	if v := first(q, "max"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, errBadParam("max")
		}
		hi = d
	}
	return f.WithPriceRange(lo, hi), nil
}

func first(q map[string][]string, key string) string {
	if vs := q[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

type badParam string

func (b badParam) Error() string { return "Invalid " + string(b) + " parameter" }

func errBadParam(name string) error { return badParam(name) }

// GetProductDetails handles GET /api/products/:id.
func (h *Handler) GetProductDetails(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := strconv.Atoi(ps.ByName("id"))
	if err != nil {
		utils.RespondWithMessage(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	product, ok := h.store.Get(id)
	if !ok {
		utils.RespondWithMessage(w, http.StatusNotFound, "Product not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, product)
}

type facetsResponse struct {
	Categories []string   `json:"categories"`
	Brands     []string   `json:"brands"`
	PriceRange PriceRange `json:"priceRange"`
}

// GetFacets handles GET /api/facets.
func (h *Handler) GetFacets(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	lo, hi := h.store.PriceBounds()
	utils.RespondWithJSON(w, http.StatusOK, facetsResponse{
		Categories: h.store.Categories(),
		Brands:     h.store.Brands(),
		PriceRange: PriceRange{Min: lo, Max: hi},
	})
}
