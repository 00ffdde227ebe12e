package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/core/user"
	"github.com/frahmantamala/hr-portal/internal/gateway"
	"github.com/frahmantamala/hr-portal/internal/session"
)

const (
	registerPath = "/users/register"
	loginPath    = "/users/login"
	logoutPath   = "/users/logout"
)

// Gateway is the part of the auth gateway the clients depend on.
type Gateway interface {
	DoJSON(ctx context.Context, req gateway.Request, out interface{}) (*gateway.Response, error)
}

// Service runs register, login and logout against the backend and keeps the
// session store in step.
type Service struct {
	gateway Gateway
	store   *session.Store
	logger  *slog.Logger
}

func NewService(gw Gateway, store *session.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gateway: gw, store: store, logger: logger}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (user.User, error) {
	if err := req.Validate(); err != nil {
		return user.User{}, err
	}

	var created user.User
	if _, err := s.gateway.DoJSON(ctx, gateway.Request{
		Method:    http.MethodPost,
		Path:      registerPath,
		Body:      req,
		Anonymous: true,
	}, &created); err != nil {
		return user.User{}, err
	}

	s.logger.Info("user registered", "user_id", created.ID, "username", created.Username)
	return created, nil
}

// Login authenticates and stores the returned session. The store is left
// untouched when the response lacks the token or the user.
func (s *Service) Login(ctx context.Context, req LoginRequest) (session.Session, error) {
	if err := req.Validate(); err != nil {
		return session.Session{}, err
	}

	var resp LoginResponse
	httpResp, err := s.gateway.DoJSON(ctx, gateway.Request{
		Method:    http.MethodPost,
		Path:      loginPath,
		Body:      req,
		Anonymous: true,
	}, &resp)
	if err != nil {
		return session.Session{}, err
	}

	if resp.AccessToken == "" || resp.User == nil || resp.User.ID == "" {
		return session.Session{}, internal.NewExternalError("login response is missing the token or the user", httpResp.StatusCode)
	}
	if !resp.User.Role.Valid() {
		return session.Session{}, internal.NewExternalError("login response carries an unknown role", httpResp.StatusCode)
	}

	if err := s.store.Set(ctx, *resp.User, resp.AccessToken); err != nil {
		return session.Session{}, err
	}

	s.logger.Info("user logged in", "user_id", resp.User.ID, "role", resp.User.Role)
	return s.store.Get(), nil
}

// Logout ends the session locally whether or not the backend call succeeds,
// and returns the call error if there was one.
func (s *Service) Logout(ctx context.Context) error {
	_, err := s.gateway.DoJSON(ctx, gateway.Request{Method: http.MethodPost, Path: logoutPath}, nil)
	s.store.Clear(ctx)

	if err != nil {
		s.logger.Warn("logout call failed, session cleared locally", "error", err)
		return err
	}
	s.logger.Info("user logged out")
	return nil
}
