package mockapi

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/core/user"
	"github.com/frahmantamala/hr-portal/internal/transport"
)

// API bundles the in-memory backend: accounts, employees, token issuer and
// the per-path call counters tests use to observe the client.
type API struct {
	Store   *Store
	Tokens  *TokenIssuer
	Calls   *CallCounter
	Handler *Handler
	logger  *slog.Logger
}

func New(cfg internal.MockAPIConfig, logger *slog.Logger) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := NewStore(cfg.BCryptCost)
	tokens := NewTokenIssuer(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	api := &API{
		Store:   store,
		Tokens:  tokens,
		Calls:   NewCallCounter(),
		Handler: NewHandler(transport.NewBaseHandler(logger), store, tokens),
		logger:  logger,
	}

	if cfg.SeedUsers {
		if err := Seed(store); err != nil {
			return nil, err
		}
	}

	return api, nil
}

// VerifyBearer resolves an access token to its user. The user is looked up
// again so deleted accounts lose access immediately.
func (a *API) VerifyBearer(_ context.Context, token string) (user.User, error) {
	claims, err := a.Tokens.VerifyAccessToken(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return user.User{}, errors.New("Token expired")
		}
		return user.User{}, errors.New("Invalid token")
	}

	u, err := a.Store.UserByID(claims.UserID)
	if err != nil {
		return user.User{}, errors.New("Invalid token")
	}
	return u, nil
}

// ExpireAccessTokens makes every access token issued so far answer 401.
func (a *API) ExpireAccessTokens() {
	a.Tokens.ExpireAccessTokens()
	a.logger.Info("access tokens expired")
}
