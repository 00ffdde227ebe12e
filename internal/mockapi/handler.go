package mockapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/core/user"
	"github.com/frahmantamala/hr-portal/internal/employee"
	"github.com/frahmantamala/hr-portal/internal/transport"
)

const (
	RefreshCookieName = "refreshToken"
	refreshCookiePath = "/users"
)

type Handler struct {
	*transport.BaseHandler
	store  *Store
	tokens *TokenIssuer
	now    func() time.Time
}

func NewHandler(base *transport.BaseHandler, store *Store, tokens *TokenIssuer) *Handler {
	return &Handler{
		BaseHandler: base,
		store:       store,
		tokens:      tokens,
		now:         time.Now,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.store.CreateUser(req.Username, req.Email, req.Password, user.RoleViewer)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.Logger.Info("user registered", "user_id", u.ID)
	h.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.store.Authenticate(req.Email, req.Password)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	accessToken, err := h.tokens.IssueAccessToken(u)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	refreshToken, err := h.tokens.IssueRefreshToken(u)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    refreshToken,
		Path:     refreshCookiePath,
		MaxAge:   int(h.tokens.RefreshTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	h.WriteJSON(w, http.StatusOK, auth.LoginResponse{AccessToken: accessToken, User: &u})
}

// Logout revokes the refresh cookie, if any, and always answers 200.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(RefreshCookieName); err == nil {
		if claims, err := h.tokens.VerifyRefreshToken(c.Value); err == nil {
			h.tokens.Revoke(claims)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	h.WriteJSON(w, http.StatusOK, transport.MessageResponse{Message: "Logged out successfully"})
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil || c.Value == "" {
		h.WriteError(w, http.StatusUnauthorized, "Refresh token missing")
		return
	}

	claims, err := h.tokens.VerifyRefreshToken(c.Value)
	if err != nil {
		h.WriteError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	u, err := h.store.UserByID(claims.UserID)
	if err != nil {
		h.WriteError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	accessToken, err := h.tokens.IssueAccessToken(u)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	h.WriteJSON(w, http.StatusOK, refreshResponse{AccessToken: accessToken})
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := employee.Filter{
		Page:   atoiOr(q.Get("page"), employee.DefaultPage),
		Limit:  atoiOr(q.Get("limit"), employee.DefaultLimit),
		Search: q.Get("search"),
		Role:   user.Role(q.Get("role")),
	}
	if err := filter.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.WriteJSON(w, http.StatusOK, h.store.ListEmployees(filter))
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var e employee.Employee
	if err := h.DecodeJSON(r, &e); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := employee.Validate(e, h.now); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.store.CreateEmployee(e)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.Logger.Info("employee created", "employee_id", created.ID)
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var p employee.Patch
	if err := h.DecodeJSON(r, &p); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := employee.ValidatePatch(p, h.now); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.store.UpdateEmployee(id, p)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteEmployee(id); err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.Logger.Info("employee deleted", "employee_id", id)
	h.WriteJSON(w, http.StatusOK, transport.MessageResponse{Message: "Employee deleted successfully"})
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrEmailTaken):
		h.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		h.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrEmployeeNotFound), errors.Is(err, ErrUserNotFound):
		h.WriteError(w, http.StatusNotFound, err.Error())
	default:
		h.Logger.Error("mock store failure", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
