package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// AuthHandler handles sign-up, sign-in and sign-out.
type AuthHandler struct {
	users  *service.UserService
	carts  *service.CartService
	logger *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(users *service.UserService, carts *service.CartService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		carts:  carts,
		logger: logger,
	}
}

// Signup handles POST /api/v1/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req service.CredentialsInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, err := h.users.Signup(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, user)
}

// Signin handles POST /api/v1/auth/signin
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req service.CredentialsInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sess, err := h.users.Signin(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, sess)
}

// Signout handles POST /api/v1/auth/signout. Tokens are stateless, so
// signing out only wipes the caller's cart.
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	h.carts.SignOut(r.Context(), sessionFromRequest(r))
	w.WriteHeader(http.StatusNoContent)
}
