package mockapi

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/frahmantamala/hr-portal/internal/core/user"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)

// Claims represents JWT token claims
type Claims struct {
	UserID     string `json:"user_id"`
	Role       string `json:"role"`
	Generation int64  `json:"gen,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs access and refresh tokens with separate HS256 secrets.
// Refresh tokens can be revoked; access tokens can be invalidated en masse.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	mu         sync.RWMutex
	generation int64
	revoked    map[string]time.Time
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		revoked:       make(map[string]time.Time),
	}
}

func (t *TokenIssuer) RefreshTTL() time.Duration {
	return t.refreshTTL
}

func (t *TokenIssuer) IssueAccessToken(u user.User) (string, error) {
	t.mu.RLock()
	gen := t.generation
	t.mu.RUnlock()
	return t.sign(u, gen, t.accessTTL, t.accessSecret)
}

func (t *TokenIssuer) IssueRefreshToken(u user.User) (string, error) {
	return t.sign(u, 0, t.refreshTTL, t.refreshSecret)
}

func (t *TokenIssuer) sign(u user.User, gen int64, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:     u.ID,
		Role:       string(u.Role),
		Generation: gen,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// VerifyAccessToken rejects tokens issued before the last ExpireAccessTokens call.
func (t *TokenIssuer) VerifyAccessToken(tokenString string) (*Claims, error) {
	claims, err := parse(tokenString, t.accessSecret)
	if err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	if claims.Generation != t.generation {
		return nil, ErrTokenExpired
	}
	return claims, nil
}

func (t *TokenIssuer) VerifyRefreshToken(tokenString string) (*Claims, error) {
	claims, err := parse(tokenString, t.refreshSecret)
	if err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	if _, revoked := t.revoked[claims.ID]; revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke deny-lists a refresh token until it would have expired anyway.
func (t *TokenIssuer) Revoke(claims *Claims) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	for id, until := range t.revoked {
		if until.Before(now) {
			delete(t.revoked, id)
		}
	}
	until := now.Add(t.refreshTTL)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	t.revoked[claims.ID] = until
}

// ExpireAccessTokens invalidates every access token issued so far.
func (t *TokenIssuer) ExpireAccessTokens() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.generation++
}

func parse(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
