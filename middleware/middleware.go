package middleware

import (
	"context"
	"net/http"

	"storefront/auth"
	"storefront/utils"

	"github.com/julienschmidt/httprouter"
)

// TokenVerifier checks a raw bearer token. *auth.Service satisfies it.
type TokenVerifier interface {
	Authenticate(ctx context.Context, raw string) (*auth.Claims, error)
}

// Authenticate rejects requests without a valid, unrevoked bearer token and stores the
// claims on the request context.
func Authenticate(v TokenVerifier) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			raw, ok := auth.BearerToken(r)
			if !ok {
				utils.RespondWithMessage(w, http.StatusUnauthorized, "Missing token")
				return
			}

			claims, err := v.Authenticate(r.Context(), raw)
			if err != nil {
				if auth.KindOf(err) == auth.KindInternal {
					utils.RespondWithError(w, http.StatusInternalServerError, "token check failed")
					return
				}
				utils.RespondWithMessage(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			next(w, r.WithContext(auth.WithClaims(r.Context(), claims)), ps)
		}
	}
}
