package auth

import (
	"context"
	"net/http"

	"storefront/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Logout handles POST /api/auth/logout. It must sit behind the authentication middleware.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondWithMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Logout(ctx, claims); err != nil {
		zap.L().Error("logout failed", zap.String("jti", claims.ID), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to log out")
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Logged out successfully")
}
