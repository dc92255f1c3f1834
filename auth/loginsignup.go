package auth

import (
	"context"
	"net/http"
	"time"

	"storefront/models"
	"storefront/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

// Handler exposes the account Service over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type loginResponse struct {
	Message   string          `json:"message"`
	User      models.Identity `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

type profileResponse struct {
	Message string          `json:"message"`
	User    models.Identity `json:"user"`
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req registerRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, err := h.svc.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		h.fail(w, err, "")
		return
	}

	utils.RespondWithMessage(w, http.StatusCreated, "User registered successfully")
	h.svc.Welcome(context.WithoutCancel(r.Context()), id)
}

// Login handles POST /api/auth/login. Unknown users and wrong passwords are both 400s.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch KindOf(err) {
		case KindNotFound, KindUnauthorized:
			utils.RespondWithMessage(w, http.StatusBadRequest, PublicMessage(err, "Invalid credentials"))
		default:
			h.fail(w, err, "")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, loginResponse{
		Message:   "Login successful",
		User:      res.User,
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	})
}

// UpdateProfile handles PUT /api/auth/profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req profileRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, err := h.svc.UpdateProfile(ctx, req.Email, req.Username)
	if err != nil {
		h.fail(w, err, "Internal server error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, profileResponse{
		Message: "Profile updated successfully",
		User:    id,
	})
}

// fail writes the status for err's Kind. Internal errors are logged; internalMsg, when set,
// replaces the {"error"} body with a {"message"} one.
func (h *Handler) fail(w http.ResponseWriter, err error, internalMsg string) {
	kind := KindOf(err)
	if kind == KindInternal {
		zap.L().Error("account request failed", zap.Error(err))
		if internalMsg != "" {
			utils.RespondWithMessage(w, http.StatusInternalServerError, internalMsg)
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "internal error")
		return
	}
	utils.RespondWithMessage(w, StatusOf(kind), PublicMessage(err, kind.String()))
}
