package orders

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/auth"
	"storefront/models"
	"storefront/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

// Handler serves the authenticated order endpoints.
type Handler struct {
	svc           *Service
	receiptSecret []byte
}

func NewHandler(svc *Service, receiptSecret []byte) *Handler {
	return &Handler{svc: svc, receiptSecret: receiptSecret}
}

type placeRequest struct {
	Items []models.OrderItem `json:"items"`
}

func identity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondWithMessage(w, http.StatusUnauthorized, "Unauthorized")
		return models.Identity{}, false
	}
	return claims.Identity(), true
}

// ListOrders handles GET /api/auth/orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	orders, err := h.svc.List(ctx, id)
	if err != nil {
		zap.L().Error("list orders", zap.String("user", id.ID), zap.Error(err))
		utils.RespondWithMessage(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, orders)
}

// PlaceOrder handles POST /api/auth/orders.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req placeRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	order, err := h.svc.Place(ctx, id, req.Items)
	switch {
	case errors.Is(err, ErrNoItems):
		utils.RespondWithMessage(w, http.StatusBadRequest, "Your cart is empty")
		return
	case errors.Is(err, ErrInvalidItem), errors.Is(err, ErrUnknownProduct):
		utils.RespondWithMessage(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		zap.L().Error("place order", zap.String("user", id.ID), zap.Error(err))
		utils.RespondWithMessage(w, http.StatusInternalServerError, "Failed to place order")
		return
	}

	zap.L().Info("order placed",
		zap.String("order", order.ID),
		zap.String("user", id.ID),
		zap.Stringer("total", order.TotalAmount))
	utils.RespondWithJSON(w, http.StatusCreated, order)
}

// GetReceipt handles GET /api/auth/orders/:id/receipt.
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	order, err := h.svc.Get(ctx, id, ps.ByName("id"))
	if errors.Is(err, ErrOrderNotFound) {
		utils.RespondWithMessage(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		zap.L().Error("load order for receipt", zap.Error(err))
		utils.RespondWithMessage(w, http.StatusInternalServerError, "Failed to load order")
		return
	}

	pdf, err := Receipt(order, id.Username, h.receiptSecret)
	if err != nil {
		zap.L().Error("render receipt", zap.String("order", order.ID), zap.Error(err))
		utils.RespondWithMessage(w, http.StatusInternalServerError, "Failed to generate receipt")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+order.ID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
